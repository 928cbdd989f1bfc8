package app

import (
	"context"

	"github.com/soffa-projects/tutor-shell/adapters"
	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/h"
	"github.com/soffa-projects/tutor-shell/log"
	"github.com/ztrue/tracerr"
)

type builderConfig struct {
	appName       string
	appVersion    string
	envName       string
	publicURL     string
	locales       f.LocalesConfig
	routes        []f.Route
	routerConfig  f.RouterConfig
	notifications string
	instanceId    string
}

type AppBuilder struct {
	config builderConfig
}

// Shell is the running application: locale subsystem, router and the
// optional notification forwarder.
type Shell struct {
	info       f.AppInfo
	registry   f.Registry
	loader     f.Loader
	locales    f.LocaleService
	sequencer  *Sequencer
	router     f.Router
	routes     []f.Route
	pubsub     f.PubSubProvider
	instanceId string
	cancel     context.CancelFunc
}

func New(name string, version string, envName string) AppBuilder {
	return AppBuilder{
		config: builderConfig{
			appName:    name,
			appVersion: version,
			envName:    envName,
			instanceId: h.RandomString(32),
		},
	}
}

func (app AppBuilder) WithInstanceId(id string) AppBuilder {
	app.config.instanceId = id
	return app
}

func (app AppBuilder) WithPublicURL(url string) AppBuilder {
	app.config.publicURL = url
	return app
}

func (app AppBuilder) WithLocales(cfg f.LocalesConfig) AppBuilder {
	app.config.locales = cfg
	return app
}

func (app AppBuilder) WithRoutes(routes ...f.Route) AppBuilder {
	app.config.routes = append(app.config.routes, routes...)
	return app
}

func (app AppBuilder) WithRouterConfig(cfg f.RouterConfig) AppBuilder {
	app.config.routerConfig = cfg
	return app
}

// WithNotifications forwards locale notifications to a pubsub provider
// (redis://host:port/db or fake://).
func (app AppBuilder) WithNotifications(provider string) AppBuilder {
	app.config.notifications = provider
	return app
}

// Build wires the shell. Nothing is loaded or mounted before Bootstrap.
func (app AppBuilder) Build() (*Shell, error) {
	cfg := app.config
	if cfg.locales.MissPolicy == "" {
		cfg.locales.MissPolicy = f.MissAsKey
	}

	sources, err := adapters.ResolveSources(cfg.locales)
	if err != nil {
		return nil, err
	}

	registry := adapters.NewRegistry()
	loader, err := adapters.NewLoader(registry, adapters.LoaderConfig{Timeout: cfg.locales.FetchTimeout})
	if err != nil {
		registry.Close()
		return nil, err
	}
	locales := adapters.NewLocaleService(registry, loader, cfg.locales)

	ctx, cancel := context.WithCancel(context.Background())
	var pubsub f.PubSubProvider
	if h.IsNotEmpty(cfg.notifications) {
		pubsub, err = adapters.NewPubSubProvider(cfg.notifications)
		if err == nil {
			err = pubsub.Init()
		}
		if err != nil {
			cancel()
			loader.Close()
			registry.Close()
			return nil, tracerr.Wrap(err)
		}
		adapters.ForwardNotifications(ctx, registry, pubsub, cfg.instanceId)
		adapters.FollowPeers(ctx, registry, loader, pubsub, cfg.instanceId)
	}

	routerConfig := cfg.routerConfig
	routerConfig.Name = cfg.appName
	routerConfig.Debug = !h.IsProduction(cfg.envName)
	if pubsub != nil {
		probes := map[string]func() error{"notifications": pubsub.Ping}
		for name, probe := range routerConfig.Probes {
			probes[name] = probe
		}
		routerConfig.Probes = probes
	}
	router := adapters.NewEchoRouter(routerConfig, locales)

	return &Shell{
		info: f.AppInfo{
			Name:      cfg.appName,
			Version:   cfg.appVersion,
			PublicURL: cfg.publicURL,
		},
		registry:   registry,
		loader:     loader,
		locales:    locales,
		sequencer:  NewSequencer(registry, loader, sources, cfg.locales.Chain(), cfg.locales.Policy),
		router:     router,
		routes:     cfg.routes,
		pubsub:     pubsub,
		instanceId: cfg.instanceId,
		cancel:     cancel,
	}, nil
}

// Init is Build for main(): configuration errors are fatal.
func (app AppBuilder) Init() *Shell {
	shell, err := app.Build()
	if err != nil {
		tracerr.PrintSourceColor(tracerr.Wrap(err))
		log.Fatal("failed to initialize %s: %v", app.config.appName, err)
	}
	return shell
}

// Bootstrap loads the locales according to the configured policy and mounts
// the routes.
func (app *Shell) Bootstrap(ctx context.Context) error {
	return app.sequencer.Run(ctx, func(ctx context.Context) error {
		app.router.Mount(app.routes)
		return nil
	})
}

func (app *Shell) Start(port int) {
	defer func() {
		app.Shutdown(context.Background())
	}()

	log.Info("starting %s %s (instance %s)", app.info.Name, app.info.Version, app.instanceId)
	if err := app.Bootstrap(context.Background()); err != nil {
		tracerr.PrintSourceColor(tracerr.Wrap(err))
		log.Fatal("bootstrap failed: %v", err)
	}
	log.Info("starting webserver...")
	app.router.Listen(port)
}

func (app *Shell) Shutdown(ctx context.Context) {
	if err := app.router.Shutdown(ctx); err != nil {
		log.Error("error shutting down server: %v", err)
	}
	app.cancel()
	app.loader.Close()
	app.registry.Close()
	log.Info("shutdown complete")
}

func (app *Shell) Router() f.Router {
	return app.router
}

func (app *Shell) InstanceId() string {
	return app.instanceId
}

func (app *Shell) Info() f.AppInfo {
	return app.info
}

func (app *Shell) Locales() f.LocaleService {
	return app.locales
}

func (app *Shell) Sequencer() *Sequencer {
	return app.sequencer
}

func (app *Shell) PubSub() f.PubSubProvider {
	return app.pubsub
}
