package app

import (
	"context"

	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/errors"
	"github.com/soffa-projects/tutor-shell/log"
	"golang.org/x/sync/errgroup"
)

// Sequencer registers the configured locales, loads them according to the
// bootstrap policy and mounts the UI.
type Sequencer struct {
	registry   f.Registry
	loader     f.Loader
	sources    []f.LocaleSource
	chain      f.FallbackChain
	policy     f.BootstrapPolicy
	background errgroup.Group
}

func NewSequencer(registry f.Registry, loader f.Loader, sources []f.LocaleSource, chain f.FallbackChain, policy f.BootstrapPolicy) *Sequencer {
	if policy == "" {
		policy = f.PolicyBlocking
	}
	return &Sequencer{
		registry: registry,
		loader:   loader,
		sources:  sources,
		chain:    chain,
		policy:   policy,
	}
}

// Subscribe registers a handler called once per catalog that becomes
// available or fails.
func (s *Sequencer) Subscribe(handler func(n f.Notification)) {
	s.registry.Subscribe(handler)
}

// Run performs the bootstrap. Only configuration errors and mount errors are
// returned: a locale that fails to load is logged and left Failed.
func (s *Sequencer) Run(ctx context.Context, mount func(ctx context.Context) error) error {
	s.registry.Subscribe(report)

	for _, source := range s.sources {
		if err := s.registry.Register(source.Code, source); err != nil {
			return errors.WrapConfig(err, "unable to register locale %s", source.Code)
		}
	}

	// embedded and bundled catalogs ship with the binary, a broken one is fatal
	for _, source := range s.sources {
		if source.Kind == f.SourceRemote {
			continue
		}
		if _, err := s.loader.Load(ctx, source.Code); err != nil {
			if errors.IsConfigError(err) {
				return err
			}
			log.WithLocale(string(source.Code)).Warnf("local catalog not loaded: %v", err)
		}
	}

	remotes := s.pending()
	log.Info("bootstrapping locales (policy=%s, chain=%v, pending=%v)", s.policy, s.chain, remotes)

	if s.policy == f.PolicyEager {
		if err := mount(ctx); err != nil {
			return err
		}
		for _, code := range remotes {
			s.background.Go(func() error {
				s.load(context.WithoutCancel(ctx), code)
				return nil
			})
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, code := range remotes {
		g.Go(func() error {
			s.load(gctx, code)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	return mount(ctx)
}

// Wait blocks until the background loads started by an eager bootstrap are done.
func (s *Sequencer) Wait() {
	_ = s.background.Wait()
}

// pending lists the chain members that are registered but not loaded yet.
func (s *Sequencer) pending() []f.LocaleCode {
	var out []f.LocaleCode
	for _, code := range s.chain {
		entry, ok := s.registry.Get(code)
		if !ok || entry.Status.Terminal() {
			continue
		}
		out = append(out, code)
	}
	return out
}

func (s *Sequencer) load(ctx context.Context, code f.LocaleCode) {
	if _, err := s.loader.Load(ctx, code); err != nil && errors.IsConfigError(err) {
		log.WithLocale(string(code)).Errorf("invalid catalog: %v", err)
	}
}

func report(n f.Notification) {
	entry := log.WithLocale(string(n.Code))
	if n.Status == f.Failed {
		entry.Warnf("catalog unavailable, falling back: %v", n.Err)
		return
	}
	entry.Info("catalog loaded")
}
