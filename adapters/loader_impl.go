package adapters

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/errors"
	"github.com/soffa-projects/tutor-shell/h"
	"github.com/soffa-projects/tutor-shell/log"
	"golang.org/x/sync/singleflight"
)

type LoaderConfig struct {
	// Timeout bounds one remote request; zero keeps the transport default (none).
	Timeout time.Duration
	Client  *resty.Client
}

type remoteBody struct {
	etag string
	body []byte
}

type flight struct {
	generation uint64
	cancel     context.CancelFunc
}

type loaderImpl struct {
	registry f.Registry
	client   *resty.Client
	bodies   h.Cache
	group    singleflight.Group
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	inflight map[f.LocaleCode]flight
}

func NewLoader(registry f.Registry, cfg LoaderConfig) (f.Loader, error) {
	client := cfg.Client
	if client == nil {
		client = resty.New()
	}
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/json, application/toml, application/yaml;q=0.9, */*;q=0.1")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	bodies, err := h.NewCache()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &loaderImpl{
		registry: registry,
		client:   client,
		bodies:   bodies,
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[f.LocaleCode]flight),
	}, nil
}

func (l *loaderImpl) Load(ctx context.Context, code f.LocaleCode) (*f.Catalog, error) {
	entry, ok := l.registry.Get(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownLocale, code)
	}
	switch entry.Status {
	case f.Loaded:
		return entry.Catalog, nil
	case f.Failed:
		return nil, entry.Err
	}
	ch := l.group.DoChan(string(code), func() (any, error) {
		return l.run(code)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*f.Catalog), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *loaderImpl) Reload(ctx context.Context, code f.LocaleCode) (*f.Catalog, error) {
	if _, ok := l.registry.Get(code); !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownLocale, code)
	}
	// bump the generation before cancelling so the abandoned flight cannot write
	if err := l.registry.Reset(code); err != nil {
		return nil, err
	}
	l.abandon(code)
	l.group.Forget(string(code))
	log.WithLocale(string(code)).Info("reloading catalog")
	return l.Load(ctx, code)
}

func (l *loaderImpl) Close() {
	l.cancel()
	l.bodies.Close()
}

func (l *loaderImpl) run(code f.LocaleCode) (*f.Catalog, error) {
	generation, err := l.registry.Begin(code)
	if err != nil {
		// the entry moved on between the status check and the flight start
		entry, _ := l.registry.Get(code)
		switch entry.Status {
		case f.Loaded:
			return entry.Catalog, nil
		case f.Failed:
			return nil, entry.Err
		}
		return nil, err
	}
	entry, _ := l.registry.Get(code)

	ctx, cancel := context.WithCancel(l.ctx)
	l.track(code, flight{generation: generation, cancel: cancel})
	defer l.untrack(code, generation)

	catalog, loadErr := l.fetch(ctx, entry.Source)
	if l.ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrAbandoned, code)
	}
	if loadErr != nil {
		if err := l.registry.Fail(code, generation, loadErr); err != nil {
			return nil, l.rejected(code, err)
		}
		return nil, loadErr
	}
	if err := l.registry.Publish(code, generation, catalog); err != nil {
		return nil, l.rejected(code, err)
	}
	log.Debug("[loader] locale %s loaded with %d messages", code, catalog.Len())
	return catalog, nil
}

func (l *loaderImpl) rejected(code f.LocaleCode, err error) error {
	if errors.Is(err, errors.ErrStaleLoad) {
		log.Debug("[loader] discarding abandoned load of %s", code)
		return fmt.Errorf("%w: %s", errors.ErrAbandoned, code)
	}
	log.Error("[loader] registry rejected load of %s: %v", code, err)
	return err
}

// track records the cancel func of a flight. A flight older than the one
// already tracked was abandoned by a reload and is cancelled on the spot.
func (l *loaderImpl) track(code f.LocaleCode, fl flight) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.inflight[code]; ok {
		if current.generation > fl.generation {
			fl.cancel()
			return
		}
		current.cancel()
	}
	l.inflight[code] = fl
}

func (l *loaderImpl) untrack(code f.LocaleCode, generation uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fl, ok := l.inflight[code]; ok && fl.generation == generation {
		fl.cancel()
		delete(l.inflight, code)
	}
}

func (l *loaderImpl) abandon(code f.LocaleCode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fl, ok := l.inflight[code]; ok {
		fl.cancel()
		delete(l.inflight, code)
	}
}

func (l *loaderImpl) fetch(ctx context.Context, source f.LocaleSource) (*f.Catalog, error) {
	switch source.Kind {
	case f.SourceEmbedded:
		catalog, err := ParseCatalog(source.Code, source.Format, source.Data)
		if err != nil {
			return nil, errors.WrapConfig(err, "malformed embedded catalog for %s", source.Code)
		}
		return catalog, nil
	case f.SourceBundled:
		data, err := fs.ReadFile(source.FS, source.Path)
		if err != nil {
			return nil, errors.WrapConfig(err, "bundled catalog %s is missing", source.Path)
		}
		catalog, err := ParseCatalog(source.Code, source.Format, data)
		if err != nil {
			return nil, errors.WrapConfig(err, "malformed bundled catalog %s", source.Path)
		}
		return catalog, nil
	case f.SourceRemote:
		return l.fetchRemote(ctx, source)
	default:
		return nil, errors.Config("unknown source kind %d for locale %s", source.Kind, source.Code)
	}
}

func (l *loaderImpl) fetchRemote(ctx context.Context, source f.LocaleSource) (*f.Catalog, error) {
	code := string(source.Code)
	req := l.client.R().SetContext(ctx)
	cached, hasCached := l.cachedBody(source.URL)
	if hasCached {
		req.SetHeader("If-None-Match", cached.etag)
	}
	resp, err := req.Get(source.URL)
	if err != nil {
		return nil, errors.NewLoadError(code, errors.Unreachable, err)
	}

	body := resp.Body()
	switch {
	case resp.StatusCode() == http.StatusNotModified && hasCached:
		log.Debug("[loader] %s not modified, reusing cached body", source.URL)
		body = cached.body
	case !resp.IsSuccess():
		return nil, errors.NewStatusError(code, resp.StatusCode())
	default:
		if etag := resp.Header().Get("ETag"); etag != "" {
			l.bodies.Set(source.URL, remoteBody{etag: etag, body: body})
			l.bodies.Wait()
		}
	}

	format := formatFromContentType(resp.Header().Get("Content-Type"), source.Format)
	catalog, err := ParseCatalog(source.Code, format, body)
	if err != nil {
		return nil, errors.NewLoadError(code, errors.MalformedCatalog, err)
	}
	return catalog, nil
}

func (l *loaderImpl) cachedBody(url string) (remoteBody, bool) {
	value, ok := l.bodies.Get(url)
	if !ok {
		return remoteBody{}, false
	}
	cached, ok := value.(remoteBody)
	return cached, ok
}
