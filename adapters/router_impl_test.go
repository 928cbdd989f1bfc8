package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/a-h/templ"
	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/test"
)

func textView(render func(c f.ViewContext) string) f.View {
	return func(c f.ViewContext) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, render(c))
			return err
		})
	}
}

var testRoutes = []f.Route{
	{Path: "/", Name: "landing", View: textView(func(c f.ViewContext) string {
		return fmt.Sprintf("<h1>%s</h1><p>%s</p>", c.T("greeting"), c.T("farewell"))
	})},
	{Path: "/tinylesson/:theme/:language", Name: "tinylessoninside", Props: true, View: textView(func(c f.ViewContext) string {
		return fmt.Sprintf("%s:%s:%s", c.Route, c.Prop("theme"), c.Prop("language"))
	})},
}

func newTestRouter(t *testing.T) (f.Router, *test.RestClient) {
	x := newFixture(t, "es", "en")
	x.publish("es", map[string]any{"greeting": "Hola"})
	x.publish("en", map[string]any{"greeting": "Hello", "farewell": "Bye"})
	loader, err := NewLoader(x.registry, LoaderConfig{})
	test.NewAssertions(t).Nil(err)
	t.Cleanup(loader.Close)

	service := NewLocaleService(x.registry, loader, f.LocalesConfig{
		Active:     "es",
		Fallbacks:  []f.LocaleCode{"en"},
		MissPolicy: f.MissAsKey,
	})
	router := NewEchoRouter(f.RouterConfig{
		SessionSecret: "test-secret",
		LocalesFS:     fstest.MapFS{"en.json": {Data: []byte(`{"greeting":"Hello"}`)}},
	}, service)
	server := httptest.NewServer(router.Handler())
	t.Cleanup(server.Close)
	return router, test.NewRestClient(t, server.URL)
}

func TestRouter_PagesAfterMount(t *testing.T) {
	assert := test.NewAssertions(t)
	router, client := newTestRouter(t)

	assert.False(router.Mounted())
	client.Get("/").IsNotFound()

	router.Mount(testRoutes)
	assert.True(router.Mounted())

	page := client.Get("/").IsOk().Text()
	assert.Contains(page, "<h1>Hola</h1>")
	// missing in es, resolved from en
	assert.Contains(page, "<p>Bye</p>")

	page = client.Get("/", test.HttpReq{Query: map[string]string{"lang": "en"}}).IsOk().Text()
	assert.Contains(page, "<h1>Hello</h1>")
}

func TestRouter_MountIsOnce(t *testing.T) {
	assert := test.NewAssertions(t)
	router, client := newTestRouter(t)

	router.Mount(testRoutes)
	router.Mount(testRoutes)
	assert.True(router.Mounted())
	client.Get("/").IsOk()
}

func TestRouter_RouteProps(t *testing.T) {
	assert := test.NewAssertions(t)
	router, client := newTestRouter(t)
	router.Mount(testRoutes)

	page := client.Get("/tinylesson/travel/fr").IsOk().Text()
	assert.Equals(page, "tinylessoninside:travel:fr")
}

func TestRouter_SwitchLocale(t *testing.T) {
	assert := test.NewAssertions(t)
	router, client := newTestRouter(t)
	router.Mount(testRoutes)

	client.Post("/locale/en").IsOk().JSON().Match(`{"locale":"en"}`)
	page := client.Get("/").IsOk().Text()
	assert.Contains(page, "<h1>Hello</h1>")

	client.Post("/locale/es").IsOk()
	page = client.Get("/").IsOk().Text()
	assert.Contains(page, "<h1>Hola</h1>")
}

func TestRouter_SwitchToUnknownLocale(t *testing.T) {
	_, client := newTestRouter(t)

	client.Post("/locale/xx").IsNotFound().JSON().
		MatchShape(`{"requestId":"#string","kind":"err_functional","timestamp":"#string","uri":"/locale/xx","error":"#string","success":false}`)
}

func TestRouter_LocalesStatus(t *testing.T) {
	assert := test.NewAssertions(t)
	_, client := newTestRouter(t)

	res := client.Get("/locales/status").IsOk().JSON()
	value := res.Value()
	assert.Equals(value.Get("active"), "es")
	assert.Equals(value.Get("locales.#"), float64(2))
	assert.Equals(value.Get("locales.0.locale"), "es")
	assert.Equals(value.Get("locales.0.status"), "loaded")
	assert.Equals(value.Get("locales.1.messages"), float64(2))
}

func TestRouter_ServesBundledLocales(t *testing.T) {
	_, client := newTestRouter(t)

	client.Get("/locales/en.json").IsOk().JSON().Match(`{"greeting":"Hello"}`)
}

func TestRouter_Health(t *testing.T) {
	assert := test.NewAssertions(t)
	_, client := newTestRouter(t)

	value := client.Get("/health").IsOk().JSON().Value()
	assert.Equals(value.Get("status"), f.HealthUp)
	assert.Equals(value.Get("components.locales.status"), f.HealthUp)
}
