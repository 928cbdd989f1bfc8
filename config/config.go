package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"github.com/soffa-projects/tutor-shell/h"
)

// Shell is the startup configuration of the tutor shell.
type Shell struct {
	Env           string `envconfig:"ENV" default:"development"`
	Port          int    `envconfig:"PORT" default:"8080" validate:"gte=0,lte=65535"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	PublicURL     string `envconfig:"PUBLIC_URL"`
	SessionSecret string `envconfig:"SESSION_SECRET"`

	ActiveLocale     string            `envconfig:"ACTIVE_LOCALE" default:"es" validate:"required"`
	FallbackLocales  string            `envconfig:"FALLBACK_LOCALES" default:"en"`
	SupportedLocales string            `envconfig:"SUPPORTED_LOCALES" default:"es,en" validate:"required"`
	LocaleSources    map[string]string `envconfig:"LOCALE_SOURCES" default:"es:remote,en:bundled"`
	BootstrapPolicy  string            `envconfig:"BOOTSTRAP_POLICY" default:"blocking" validate:"oneof=blocking eager"`
	LocalesBaseURL   string            `envconfig:"LOCALES_BASE_URL" default:"http://localhost:8081"`
	LocalesPattern   string            `envconfig:"LOCALES_PATH_PATTERN" default:"/locales/%s.json" validate:"required,contains=%s"`
	FetchTimeout     time.Duration     `envconfig:"LOCALES_FETCH_TIMEOUT" default:"0s"`
	MissPolicy       string            `envconfig:"MISS_POLICY" default:"key" validate:"oneof=key empty"`

	NotificationsProvider string `envconfig:"NOTIFICATIONS_PROVIDER"`
}

// Fallbacks lists FALLBACK_LOCALES in order, without blanks or duplicates.
func (s Shell) Fallbacks() []string {
	return h.SplitList(s.FallbackLocales)
}

func (s Shell) Supported() []string {
	return h.SplitList(s.SupportedLocales)
}

// Load reads .env (outside production), then the process environment, into cfg
// and validates the result.
func Load(cfg any) error {
	if !h.IsProduction(os.Getenv("ENV")) {
		err := godotenv.Load(".env")
		if err != nil {
			log.Warnf("unable to load .env file: %v", err)
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return err
	}
	return validator.New().Struct(cfg)
}

// MustLoad is Load for main(); it exits on error.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		log.Fatal(err)
	}
}
