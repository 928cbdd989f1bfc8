package test

import (
	"context"
	"net/http/httptest"
	"path"
	"testing"

	f "github.com/soffa-projects/tutor-shell/core"
)

// Helper serves an app on an httptest server for end-to-end tests.
type Helper struct {
	app        f.App
	InstanceId string
	Context    context.Context
	Server     *httptest.Server
	Http       *RestClient
	Assert     Assertions
	rootDir    string
}

func New(app f.App, t *testing.T) *Helper {
	server := httptest.NewServer(app.Router().Handler())
	rootDir := ProjectRoot(t)
	helper := &Helper{
		app:        app,
		InstanceId: app.InstanceId(),
		Context:    context.TODO(),
		Server:     server,
		Http:       NewRestClient(t, server.URL),
		Assert:     NewAssertions(t),
		rootDir:    rootDir,
	}
	t.Cleanup(helper.TearDown)
	return helper
}

func (t *Helper) FilePath(p string) string {
	return path.Join(t.rootDir, p)
}

func (t *Helper) TearDown() {
	t.Server.Close()
	t.app.Shutdown(context.Background())
}
