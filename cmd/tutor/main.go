package main

import (
	"github.com/soffa-projects/tutor-shell/app"
	"github.com/soffa-projects/tutor-shell/config"
	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/log"
	"github.com/soffa-projects/tutor-shell/web"
)

var version = "dev"

func main() {
	var cfg config.Shell
	config.MustLoad(&cfg)
	log.Setup(cfg.LogLevel, cfg.LogFormat)

	app.New("tutor-shell", version, cfg.Env).
		WithPublicURL(cfg.PublicURL).
		WithLocales(locales(cfg)).
		WithRoutes(web.Routes()...).
		WithRouterConfig(f.RouterConfig{
			SessionSecret: cfg.SessionSecret,
			LocalesFS:     web.Locales(),
		}).
		WithNotifications(cfg.NotificationsProvider).
		Init().
		Start(cfg.Port)
}

func locales(cfg config.Shell) f.LocalesConfig {
	sources := make(map[f.LocaleCode]string, len(cfg.LocaleSources))
	for code, kind := range cfg.LocaleSources {
		sources[f.LocaleCode(code)] = kind
	}
	return f.LocalesConfig{
		Active:        f.LocaleCode(cfg.ActiveLocale),
		Fallbacks:     codes(cfg.Fallbacks()),
		Supported:     codes(cfg.Supported()),
		Sources:       sources,
		Embedded:      web.Embedded(),
		BundledFS:     web.Bundle(),
		RemoteBaseURL: cfg.LocalesBaseURL,
		RemotePattern: cfg.LocalesPattern,
		FetchTimeout:  cfg.FetchTimeout,
		Policy:        f.BootstrapPolicy(cfg.BootstrapPolicy),
		MissPolicy:    f.MissPolicy(cfg.MissPolicy),
	}
}

func codes(values []string) []f.LocaleCode {
	out := make([]f.LocaleCode, 0, len(values))
	for _, value := range values {
		out = append(out, f.LocaleCode(value))
	}
	return out
}
