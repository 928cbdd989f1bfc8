package f

import (
	"context"

	"github.com/a-h/templ"
)

type App interface {
	Start(port int)
	Shutdown(ctx context.Context)
	Router() Router
	InstanceId() string
}

type AppInfo struct {
	Name      string
	Version   string
	PublicURL string
}

// Route is one entry of the static page table handed to the router.
// When Props is set, the path parameters are forwarded to the view.
type Route struct {
	Path  string
	Name  string
	View  View
	Props bool
}

type View func(c ViewContext) templ.Component

type ViewContext struct {
	I18n
	Route string
	Props map[string]string
}

func (c ViewContext) Prop(name string) string {
	return c.Props[name]
}
