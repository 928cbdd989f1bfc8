package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/errors"
	"github.com/soffa-projects/tutor-shell/test"
)

type fixture struct {
	t        *testing.T
	registry f.Registry
}

func newFixture(t *testing.T, codes ...f.LocaleCode) fixture {
	registry := NewRegistry()
	t.Cleanup(registry.Close)
	for _, code := range codes {
		test.NewAssertions(t).Nil(registry.Register(code, f.LocaleSource{Kind: f.SourceRemote}))
	}
	return fixture{t: t, registry: registry}
}

func (x fixture) publish(code f.LocaleCode, tree map[string]any) {
	assert := test.NewAssertions(x.t)
	catalog, err := f.NewCatalog(code, tree)
	assert.Nil(err)
	generation, err := x.registry.Begin(code)
	assert.Nil(err)
	assert.Nil(x.registry.Publish(code, generation, catalog))
}

func (x fixture) fail(code f.LocaleCode, err error) {
	assert := test.NewAssertions(x.t)
	generation, beginErr := x.registry.Begin(code)
	assert.Nil(beginErr)
	assert.Nil(x.registry.Fail(code, generation, err))
}

func TestResolver_ActiveLocaleWins(t *testing.T) {
	assert := test.NewAssertions(t)
	x := newFixture(t, "es", "en")
	x.publish("en", map[string]any{"greeting": "Hello"})
	x.publish("es", map[string]any{"greeting": "Hola"})

	value, ok := NewResolver(x.registry).Resolve(f.NewFallbackChain("es", "en"), "greeting")
	assert.True(ok)
	assert.Equals(value, "Hola")
}

func TestResolver_FailedActiveFallsThrough(t *testing.T) {
	assert := test.NewAssertions(t)
	x := newFixture(t, "es", "en")
	x.publish("en", map[string]any{"greeting": "Hello"})
	x.fail("es", errors.NewStatusError("es", http.StatusNotFound))

	catalog, value, ok := NewResolver(x.registry).ResolveFrom(f.NewFallbackChain("es", "en"), "greeting")
	assert.True(ok)
	assert.Equals(value, "Hello")
	assert.Equals(catalog.Locale(), f.LocaleCode("en"))
}

func TestResolver_LoadingAndUnloadedAreSkipped(t *testing.T) {
	assert := test.NewAssertions(t)
	x := newFixture(t, "es", "pt", "en")
	x.publish("en", map[string]any{"greeting": "Hello"})
	_, err := x.registry.Begin("es")
	assert.Nil(err)

	value, ok := NewResolver(x.registry).Resolve(f.NewFallbackChain("es", "pt", "en"), "greeting")
	assert.True(ok)
	assert.Equals(value, "Hello")
}

func TestResolver_FirstMatchNoMerge(t *testing.T) {
	assert := test.NewAssertions(t)
	x := newFixture(t, "es", "en")
	x.publish("es", map[string]any{"menu": map[string]any{"title": "Menú"}})
	x.publish("en", map[string]any{"menu": map[string]any{"title": "Menu", "subtitle": "Pick a lesson"}})
	resolver := NewResolver(x.registry)
	chain := f.NewFallbackChain("es", "en")

	title, _ := resolver.Resolve(chain, "menu.title")
	subtitle, _ := resolver.Resolve(chain, "menu.subtitle")
	assert.Equals(title, "Menú")
	assert.Equals(subtitle, "Pick a lesson")

	// a subtree is not a leaf
	_, ok := resolver.Resolve(chain, "menu")
	assert.False(ok)
}

func TestResolver_Miss(t *testing.T) {
	assert := test.NewAssertions(t)
	x := newFixture(t, "es", "en")
	x.publish("es", map[string]any{"greeting": "Hola"})
	x.publish("en", map[string]any{"greeting": "Hello"})
	resolver := NewResolver(x.registry)

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("%s.%s", faker.Word(), faker.Word())
		_, ok := resolver.Resolve(f.NewFallbackChain("es", "en"), key)
		assert.False(ok)
	}
	// unknown chain members are ignored
	_, ok := resolver.Resolve(f.NewFallbackChain("fr"), "greeting")
	assert.False(ok)
}

func TestResolver_RandomCatalogs(t *testing.T) {
	assert := test.NewAssertions(t)
	x := newFixture(t, "es", "en")
	es := map[string]any{}
	en := map[string]any{}
	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("k%d_%s", i, faker.Word())
		en[key] = faker.Sentence()
		if i%2 == 0 {
			es[key] = faker.Sentence()
		}
	}
	x.publish("es", es)
	x.publish("en", en)
	resolver := NewResolver(x.registry)
	chain := f.NewFallbackChain("es", "en")

	for key := range en {
		value, ok := resolver.Resolve(chain, key)
		assert.True(ok)
		if expected, inEs := es[key]; inEs {
			assert.Equals(value, expected)
		} else {
			assert.Equals(value, en[key])
		}
	}
}

func TestTranslator_MissPolicy(t *testing.T) {
	assert := test.NewAssertions(t)
	x := newFixture(t, "es")
	x.publish("es", map[string]any{"greeting": "Hola"})
	chain := f.NewFallbackChain("es")

	asKey := NewTranslator(x.registry, chain, f.MissAsKey)
	assert.Equals(asKey.T("greeting"), "Hola")
	assert.Equals(asKey.T("menu.title"), "menu.title")
	assert.Equals(asKey.Locale(), f.LocaleCode("es"))

	asEmpty := NewTranslator(x.registry, chain, f.MissAsEmpty)
	assert.Equals(asEmpty.T("menu.title"), "")
}

func TestTranslator_Templates(t *testing.T) {
	assert := test.NewAssertions(t)
	x := newFixture(t, "en")
	x.publish("en", map[string]any{
		"welcome": "Welcome back, {{.Name}}",
		"lessons": map[string]any{
			"one":   "{{.PluralCount}} lesson left",
			"other": "{{.PluralCount}} lessons left",
		},
	})
	tr := NewTranslator(x.registry, f.NewFallbackChain("en"), f.MissAsKey)

	assert.Equals(tr.T("welcome", map[string]any{"Name": "Ana"}), "Welcome back, Ana")
	assert.Equals(tr.T("lessons", 1), "1 lesson left")
	assert.Equals(tr.T("lessons", 3), "3 lessons left")
	assert.Equals(tr.T("lessons"), "0 lessons left")
	assert.Equals(tr.T("lessons.one"), "{{.PluralCount}} lesson left")
	// without arguments the raw value is returned
	assert.Equals(tr.T("welcome"), "Welcome back, {{.Name}}")
}

func TestLocaleService_Translator(t *testing.T) {
	assert := test.NewAssertions(t)
	x := newFixture(t, "es", "en")
	x.publish("es", map[string]any{"greeting": "Hola"})
	x.publish("en", map[string]any{"greeting": "Hello", "farewell": "Bye"})
	service := NewLocaleService(x.registry, nil, f.LocalesConfig{
		Active:     "es",
		Fallbacks:  []f.LocaleCode{"en"},
		MissPolicy: f.MissAsKey,
	})

	assert.Equals(service.Default(), f.LocaleCode("es"))
	assert.Equals(service.Translator("").T("greeting"), "Hola")
	assert.Equals(service.Translator("en").T("greeting"), "Hello")
	assert.Equals(service.Translator("en").Locale(), f.LocaleCode("en"))
	assert.Equals(service.Translator("es").T("farewell"), "Bye")

	entries := service.Entries()
	assert.Equals(len(entries), 2)
	assert.Equals(entries[0].Code, f.LocaleCode("es"))
}

func TestLocaleService_Activate(t *testing.T) {
	assert := test.NewAssertions(t)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"greeting":"Olá"}`))
	}))
	defer server.Close()

	registry, loader := newLoaderFixture(t, LoaderConfig{}, remote("pt", server.URL+"/locales/pt.json"))
	service := NewLocaleService(registry, loader, f.LocalesConfig{Active: "pt", MissPolicy: f.MissAsKey})

	// returns before the catalog arrives
	assert.Nil(service.Activate(context.Background(), "pt"))
	assert.Equals(service.Translator("pt").T("greeting"), "greeting")
	close(release)

	assert.Eventually(func() bool {
		return service.Translator("pt").T("greeting") == "Olá"
	}, time.Second)

	err := service.Activate(context.Background(), "xx")
	assert.True(errors.Is(err, errors.ErrUnknownLocale))
}
