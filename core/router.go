package f

import (
	"context"
	"io/fs"
	"net/http"
)

type RouterConfig struct {
	// Name is reported by /health.
	Name          string
	AllowOrigins  []string
	AssetsFS      fs.FS
	LocalesFS     fs.FS
	SessionSecret string
	Debug         bool
	// Probes are extra /health components; any failure reports DOWN.
	Probes map[string]func() error
}

// Router is the page router collaborator; Mount is the UI mount point.
type Router interface {
	Handler() http.Handler
	Mount(routes []Route)
	Mounted() bool
	Listen(port int)
	Shutdown(ctx context.Context) error
}
