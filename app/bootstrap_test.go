package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soffa-projects/tutor-shell/adapters"
	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/errors"
	"github.com/soffa-projects/tutor-shell/test"
)

type boot struct {
	sequencer *Sequencer
	registry  f.Registry
	resolver  adapters.Resolver
	chain     f.FallbackChain
}

func newBoot(t *testing.T, policy f.BootstrapPolicy, baseURL string, embeddedEn string) boot {
	assert := test.NewAssertions(t)
	cfg := f.LocalesConfig{
		Active:        "es",
		Fallbacks:     []f.LocaleCode{"en"},
		Supported:     []f.LocaleCode{"es", "en"},
		Sources:       map[f.LocaleCode]string{"es": "remote", "en": "embedded"},
		Embedded:      map[f.LocaleCode][]byte{"en": []byte(embeddedEn)},
		RemoteBaseURL: baseURL,
		Policy:        policy,
	}
	sources, err := adapters.ResolveSources(cfg)
	assert.Nil(err)
	registry := adapters.NewRegistry()
	loader, err := adapters.NewLoader(registry, adapters.LoaderConfig{})
	assert.Nil(err)
	t.Cleanup(func() {
		loader.Close()
		registry.Close()
	})
	return boot{
		sequencer: NewSequencer(registry, loader, sources, cfg.Chain(), cfg.Policy),
		registry:  registry,
		resolver:  adapters.NewResolver(registry),
		chain:     cfg.Chain(),
	}
}

func (b boot) resolve(key string) string {
	value, _ := b.resolver.Resolve(b.chain, key)
	return value
}

func (b boot) status(code f.LocaleCode) f.LoadStatus {
	entry, _ := b.registry.Get(code)
	return entry.Status
}

func catalogServer(delay time.Duration, status int, contentType string, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestBootstrap_BothLocalesAvailable(t *testing.T) {
	assert := test.NewAssertions(t)
	server := catalogServer(0, http.StatusOK, "application/json", `{"greeting":"Hola"}`)
	defer server.Close()
	b := newBoot(t, f.PolicyBlocking, server.URL, `{"greeting":"Hello"}`)

	assert.Nil(b.sequencer.Run(context.Background(), func(ctx context.Context) error { return nil }))

	assert.Equals(b.status("es"), f.Loaded)
	assert.Equals(b.status("en"), f.Loaded)
	assert.Equals(b.resolve("greeting"), "Hola")
}

func TestBootstrap_MissingRemoteFallsBack(t *testing.T) {
	assert := test.NewAssertions(t)
	server := catalogServer(0, http.StatusNotFound, "text/plain", "404 page not found")
	defer server.Close()
	b := newBoot(t, f.PolicyBlocking, server.URL, `{"greeting":"Hello"}`)

	mounted := false
	err := b.sequencer.Run(context.Background(), func(ctx context.Context) error {
		mounted = true
		return nil
	})
	assert.Nil(err)
	assert.True(mounted)

	entry, _ := b.registry.Get("es")
	assert.Equals(entry.Status, f.Failed)
	assert.True(errors.IsLoadError(entry.Err, errors.SourceUnavailable))
	assert.Equals(b.resolve("greeting"), "Hello")
}

func TestBootstrap_HtmlInsteadOfCatalog(t *testing.T) {
	assert := test.NewAssertions(t)
	server := catalogServer(0, http.StatusOK, "text/html", "<!doctype html><html><body>app</body></html>")
	defer server.Close()
	b := newBoot(t, f.PolicyBlocking, server.URL, `{"greeting":"Hello"}`)

	assert.Nil(b.sequencer.Run(context.Background(), func(ctx context.Context) error { return nil }))

	entry, _ := b.registry.Get("es")
	assert.Equals(entry.Status, f.Failed)
	assert.True(errors.IsLoadError(entry.Err, errors.MalformedCatalog))
	assert.Equals(b.resolve("greeting"), "Hello")
}

func TestBootstrap_BlockingMountsAfterTerminalState(t *testing.T) {
	assert := test.NewAssertions(t)
	server := catalogServer(200*time.Millisecond, http.StatusOK, "application/json", `{"greeting":"Hola"}`)
	defer server.Close()
	b := newBoot(t, f.PolicyBlocking, server.URL, `{"greeting":"Hello"}`)

	started := time.Now()
	var atMount f.LoadStatus
	var firstRender string
	err := b.sequencer.Run(context.Background(), func(ctx context.Context) error {
		atMount = b.status("es")
		firstRender = b.resolve("greeting")
		return nil
	})
	assert.Nil(err)
	assert.True(time.Since(started) >= 200*time.Millisecond)
	assert.True(atMount.Terminal())
	assert.Equals(firstRender, "Hola")
}

func TestBootstrap_EagerMountsImmediately(t *testing.T) {
	assert := test.NewAssertions(t)
	server := catalogServer(200*time.Millisecond, http.StatusOK, "application/json", `{"greeting":"Hola"}`)
	defer server.Close()
	b := newBoot(t, f.PolicyEager, server.URL, `{"greeting":"Hello"}`)

	var mu sync.Mutex
	var notifications []f.Notification
	b.sequencer.Subscribe(func(n f.Notification) {
		mu.Lock()
		defer mu.Unlock()
		notifications = append(notifications, n)
	})

	var firstRender string
	started := time.Now()
	err := b.sequencer.Run(context.Background(), func(ctx context.Context) error {
		firstRender = b.resolve("greeting")
		return nil
	})
	assert.Nil(err)
	assert.True(time.Since(started) < 200*time.Millisecond)
	// es is still on its way, en answers first
	assert.Equals(firstRender, "Hello")

	b.sequencer.Wait()
	assert.Equals(b.resolve("greeting"), "Hola")

	mu.Lock()
	defer mu.Unlock()
	var es []f.Notification
	for _, n := range notifications {
		if n.Code == "es" {
			es = append(es, n)
		}
	}
	assert.Equals(len(es), 1)
	assert.Equals(es[0].Status, f.Loaded)
}

func TestBootstrap_EagerFailureNotifiesOnce(t *testing.T) {
	assert := test.NewAssertions(t)
	server := catalogServer(50*time.Millisecond, http.StatusInternalServerError, "text/plain", "boom")
	defer server.Close()
	b := newBoot(t, f.PolicyEager, server.URL, `{"greeting":"Hello"}`)

	var failed atomic.Int32
	b.sequencer.Subscribe(func(n f.Notification) {
		if n.Code == "es" && n.Status == f.Failed {
			failed.Add(1)
		}
	})
	assert.Nil(b.sequencer.Run(context.Background(), func(ctx context.Context) error { return nil }))

	assert.Eventually(func() bool { return failed.Load() == 1 }, time.Second)
	assert.Consistently(func() bool { return failed.Load() == 1 }, 50*time.Millisecond)
	assert.Equals(b.resolve("greeting"), "Hello")
}

func TestBootstrap_MalformedEmbeddedAbortsBoot(t *testing.T) {
	assert := test.NewAssertions(t)
	server := catalogServer(0, http.StatusOK, "application/json", `{"greeting":"Hola"}`)
	defer server.Close()
	b := newBoot(t, f.PolicyBlocking, server.URL, `{"greeting":`)

	mounted := false
	err := b.sequencer.Run(context.Background(), func(ctx context.Context) error {
		mounted = true
		return nil
	})
	assert.True(errors.IsConfigError(err))
	assert.False(mounted)
	assert.Equals(b.status("en"), f.Failed)
}

func TestBootstrap_EmptyEmbeddedCatalogIsLoaded(t *testing.T) {
	assert := test.NewAssertions(t)
	server := catalogServer(0, http.StatusNotFound, "text/plain", "")
	defer server.Close()
	b := newBoot(t, f.PolicyBlocking, server.URL, `{}`)

	assert.Nil(b.sequencer.Run(context.Background(), func(ctx context.Context) error { return nil }))

	assert.Equals(b.status("en"), f.Loaded)
	assert.Equals(b.resolve("greeting"), "")
}

func TestBootstrap_CancelledContext(t *testing.T) {
	assert := test.NewAssertions(t)
	server := catalogServer(200*time.Millisecond, http.StatusOK, "application/json", `{}`)
	defer server.Close()
	b := newBoot(t, f.PolicyBlocking, server.URL, `{}`)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	mounted := false
	err := b.sequencer.Run(ctx, func(ctx context.Context) error {
		mounted = true
		return nil
	})
	assert.True(errors.Is(err, context.DeadlineExceeded))
	assert.False(mounted)
}
