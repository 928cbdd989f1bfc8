package adapters

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	prettylogger "github.com/rdbell/echo-pretty-logger"
	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/errors"
	"github.com/soffa-projects/tutor-shell/h"
	"github.com/soffa-projects/tutor-shell/log"
	"github.com/ztrue/tracerr"
)

const _sessionName = "session"
const _localeKey = "locale"
const _langParam = "lang"

type routerImpl struct {
	internal *echo.Echo
	locales  f.LocaleService
	name     string
	probes   map[string]func() error
	sessions bool
	mounted  atomic.Bool
}

func NewEchoRouter(cfg f.RouterConfig, locales f.LocaleService) f.Router {
	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.Debug
	e.Use(prettylogger.Logger)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogLevel: 2,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			tracerr.PrintSourceColor(tracerr.Wrap(err))
			return formatResponse(c, errors.Technical(err.Error()))
		},
	}))
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())

	if cfg.SessionSecret != "" {
		log.Info("session secret found, enabling session middleware")
		e.Use(session.Middleware(sessions.NewCookieStore([]byte(cfg.SessionSecret))))
	}

	if cfg.AllowOrigins != nil {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowOrigins,
			AllowHeaders: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
		}))
	}

	if cfg.AssetsFS != nil {
		e.StaticFS("/assets", cfg.AssetsFS)
	}
	if cfg.LocalesFS != nil {
		e.StaticFS("/locales", cfg.LocalesFS)
	}

	r := &routerImpl{
		internal: e,
		locales:  locales,
		name:     cfg.Name,
		probes:   cfg.Probes,
		sessions: cfg.SessionSecret != "",
	}
	e.GET("/health", r.health)
	e.GET("/locales/status", r.status)
	e.POST("/locale/:code", r.switchLocale)
	return r
}

func (r *routerImpl) Handler() http.Handler {
	return r.internal
}

// Mount registers the page table. Only the first call has an effect.
func (r *routerImpl) Mount(routes []f.Route) {
	if !r.mounted.CompareAndSwap(false, true) {
		log.Warn("router already mounted, ignoring %d routes", len(routes))
		return
	}
	for _, route := range routes {
		r.internal.GET(route.Path, r.page(route))
	}
	log.Info("%d routes mounted", len(routes))
}

func (r *routerImpl) Mounted() bool {
	return r.mounted.Load()
}

func (r *routerImpl) Listen(port int) {
	if port == 0 {
		port = 8080
	}
	err := r.internal.Start(fmt.Sprintf(":%d", port))
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("failed to start server: %v", err)
	}
}

func (r *routerImpl) Shutdown(ctx context.Context) error {
	return r.internal.Shutdown(ctx)
}

func (r *routerImpl) page(route f.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		props := map[string]string{}
		if route.Props {
			values := c.ParamValues()
			for i, name := range c.ParamNames() {
				if i < len(values) {
					props[name] = values[i]
				}
			}
		}
		view := route.View(f.ViewContext{
			I18n:  r.locales.Translator(r.visitorLocale(c)),
			Route: route.Name,
			Props: props,
		})
		html, err := h.RenderTempl(c.Request().Context(), view)
		if err != nil {
			return formatResponse(c, errors.Technical(err.Error()))
		}
		return c.HTML(http.StatusOK, html)
	}
}

// visitorLocale picks ?lang= first, then the session, then the configured default.
func (r *routerImpl) visitorLocale(c echo.Context) f.LocaleCode {
	if lang := c.QueryParam(_langParam); lang != "" {
		return f.LocaleCode(lang)
	}
	if r.sessions {
		if sess, err := session.Get(_sessionName, c); err == nil {
			if value, ok := sess.Values[_localeKey].(string); ok && value != "" {
				return f.LocaleCode(value)
			}
		}
	}
	return r.locales.Default()
}

func (r *routerImpl) switchLocale(c echo.Context) error {
	code := f.LocaleCode(c.Param("code"))
	if err := r.locales.Activate(c.Request().Context(), code); err != nil {
		if errors.Is(err, errors.ErrUnknownLocale) {
			return formatResponse(c, errors.NotFound(err.Error()))
		}
		return formatResponse(c, err)
	}
	if r.sessions {
		sess, err := session.Get(_sessionName, c)
		if err != nil {
			return formatResponse(c, errors.Technical(err.Error()))
		}
		sess.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   86400 * 30,
			HttpOnly: true,
		}
		sess.Values[_localeKey] = string(code)
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return formatResponse(c, errors.Technical(err.Error()))
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"locale": code,
	})
}

type localeStatus struct {
	Locale     string `json:"locale"`
	Source     string `json:"source"`
	Status     string `json:"status"`
	Messages   int    `json:"messages"`
	Generation uint64 `json:"generation"`
	Error      string `json:"error,omitempty"`
}

func (r *routerImpl) status(c echo.Context) error {
	entries := r.locales.Entries()
	out := make([]localeStatus, 0, len(entries))
	for _, entry := range entries {
		item := localeStatus{
			Locale:     string(entry.Code),
			Source:     entry.Source.Kind.String(),
			Status:     entry.Status.String(),
			Generation: entry.Generation,
		}
		if entry.Catalog != nil {
			item.Messages = entry.Catalog.Len()
		}
		if entry.Err != nil {
			item.Error = entry.Err.Error()
		}
		out = append(out, item)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"active":  r.locales.Default(),
		"locales": out,
	})
}

func (r *routerImpl) health(c echo.Context) error {
	check := f.NewHealthCheck(r.name)
	check.AddOptional("locales", r.activeLocaleLoaded)
	for name, probe := range r.probes {
		check.Add(name, probe)
	}
	res := check.Build()
	if res.Status == f.HealthDown {
		return c.JSON(http.StatusServiceUnavailable, res)
	}
	return c.JSON(http.StatusOK, res)
}

// activeLocaleLoaded fails while pages render from fallback catalogs.
func (r *routerImpl) activeLocaleLoaded() error {
	active := r.locales.Default()
	for _, entry := range r.locales.Entries() {
		if entry.Code != active {
			continue
		}
		if entry.Status == f.Loaded {
			return nil
		}
		if entry.Err != nil {
			return entry.Err
		}
		return fmt.Errorf("locale %s is %s", active, entry.Status)
	}
	return fmt.Errorf("locale %s is not registered", active)
}

func formatResponse(c echo.Context, err error) error {
	status := errors.GetStatusCode(err)
	if status >= 500 {
		log.Error("unexpected error: %v", err)
		return mapError(c, status, "err_technical", "err_unexpected_error")
	}
	log.Warn("functional error: %v", err)
	return mapError(c, status, "err_functional", err.Error())
}

func mapError(c echo.Context, status int, kind string, error any) error {
	return c.JSON(status, map[string]any{
		"requestId": c.Response().Header().Get(echo.HeaderXRequestID),
		"kind":      kind,
		"timestamp": time.Now().Format(time.RFC3339),
		"uri":       c.Request().URL.Path,
		"error":     error,
		"success":   false,
	})
}
