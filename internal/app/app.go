// Package app assembles the console application: its route table, views,
// access guard, titles and observers, and runs one navigation session per
// history bridge connection.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/vango-dev/navcore/internal/config"
	"github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/internal/manifest"
	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/history/wsbridge"
	"github.com/vango-dev/navcore/pkg/middleware"
	"github.com/vango-dev/navcore/pkg/nav"
	"github.com/vango-dev/navcore/pkg/router"
	"github.com/vango-dev/navcore/pkg/titles"
	"github.com/vango-dev/navcore/pkg/view"
)

// App is a bootstrapped application. It is immutable and shared by all
// sessions.
type App struct {
	Config   *config.Config
	Table    *router.Table
	Views    *view.Registry
	Titles   *titles.Catalog
	Auth     Authorizer
	Registry *prometheus.Registry

	// Metrics is nil when metrics are disabled.
	Metrics *middleware.Metrics
	Tracer  *middleware.Tracer
	Logger  *slog.Logger
}

type options struct {
	auth     Authorizer
	registry *prometheus.Registry
	s3       manifest.ObjectGetter
	tp       trace.TracerProvider
	logger   *slog.Logger
}

// Option configures Bootstrap.
type Option func(*options)

// WithAuthorizer replaces the static role authorizer built from auth.role.
func WithAuthorizer(a Authorizer) Option {
	return func(o *options) { o.auth = a }
}

// WithRegistry registers metrics with reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithObjectGetter sets the S3 client used for s3:// manifests.
func WithObjectGetter(g manifest.ObjectGetter) Option {
	return func(o *options) { o.s3 = g }
}

// WithTracerProvider sets the provider for navigation spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}

// WithLogger sets the application logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Bootstrap validates cfg, builds the route table and checks every view it
// names has a handler. Any failure is a *errors.NavError and the
// application must not start.
func Bootstrap(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "app")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	defs, err := loadDefinitions(ctx, cfg, &o)
	if err != nil {
		return nil, err
	}

	table, err := router.NewTable(defs)
	if err != nil {
		return nil, errors.New(errors.Classify(err, errors.CodeMalformedPattern)).
			WithSubject(tableSource(cfg)).
			Wrap(err)
	}
	for _, s := range table.Shadowed() {
		o.logger.Warn("unreachable route", "route", s.String())
	}

	catalog, err := titles.Load()
	if err != nil {
		return nil, errors.New(errors.CodeConfig).Wrap(err)
	}
	for _, f := range cfg.I18n.Files {
		if err := catalog.LoadFile(f); err != nil {
			return nil, errors.New(errors.CodeConfig).WithSubject("i18n.files").Wrap(err)
		}
	}

	views := Views(catalog, cfg.Routes.NotFoundView, cfg.I18n.Lang)
	if err := views.Validate(table, cfg.Routes.NotFoundView); err != nil {
		return nil, errors.New(errors.Classify(err, errors.CodeMissingHandler)).
			WithSubject(tableSource(cfg)).
			Wrap(err)
	}

	auth := o.auth
	if auth == nil {
		role, err := ParseRole(cfg.Auth.Role)
		if err != nil {
			return nil, errors.New(errors.CodeConfig).WithSubject("auth.role").Wrap(err)
		}
		auth = StaticAuthorizer{Role: role}
	}

	a := &App{
		Config: cfg,
		Table:  table,
		Views:  views,
		Titles: catalog,
		Auth:   auth,
		Logger: o.logger,
	}

	if cfg.Metrics.Enabled {
		a.Registry = o.registry
		if a.Registry == nil {
			a.Registry = prometheus.NewRegistry()
		}
		a.Metrics = middleware.Prometheus(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(a.Registry),
		)
	}

	tracerOpts := []middleware.OTelOption{middleware.WithIncludeParams(true)}
	if o.tp != nil {
		tracerOpts = append(tracerOpts, middleware.WithTracerProvider(o.tp))
	}
	a.Tracer = middleware.OpenTelemetry(tracerOpts...)

	o.logger.Info("application ready",
		"routes", table.Len(),
		"source", tableSource(cfg),
		"not_found", cfg.Routes.NotFoundView)
	return a, nil
}

func loadDefinitions(ctx context.Context, cfg *config.Config, o *options) ([]router.Definition, error) {
	if cfg.Routes.Manifest == "" {
		return Routes(), nil
	}
	loader := &manifest.Loader{S3: o.s3, Logger: o.logger}
	if loader.S3 == nil && strings.HasPrefix(cfg.Routes.Manifest, "s3://") {
		loader.S3 = manifest.NewS3Client(cfg.S3)
	}
	return loader.Load(ctx, cfg.Routes.Manifest)
}

func tableSource(cfg *config.Config) string {
	if cfg.Routes.Manifest == "" {
		return "built-in routes"
	}
	return cfg.Routes.Manifest
}

// NewController creates a navigation controller over hist with the
// application's guards and observers. It is not started.
func (a *App) NewController(hist nav.History) (*nav.Controller, error) {
	opts := []nav.Option{
		nav.WithNotFound(a.Config.Routes.NotFoundView),
		nav.WithMaxRedirects(a.Config.Nav.MaxRedirects),
		nav.WithGuard(AccessGuard(a.Auth)),
		nav.WithLogger(a.Logger),
		nav.WithObserver(a.Tracer),
	}
	if a.Metrics != nil {
		opts = append(opts, nav.WithObserver(a.Metrics))
	}
	return nav.New(a.Table, hist, opts...)
}

// Session runs one tab's navigation over a bridge connection until ctx is
// done. Every committed route is rendered and sent back to the tab.
func (a *App) Session(ctx context.Context, conn *wsbridge.Conn) {
	logger := a.Logger.With("conn", conn.ID())
	if a.Metrics != nil {
		a.Metrics.BridgeConnected()
		defer a.Metrics.BridgeDisconnected()
	}

	hist := history.NewAdapter(conn,
		history.WithBase(a.Config.Routes.Base),
		history.WithLogger(logger))
	c, err := a.NewController(hist)
	if err != nil {
		logger.Error("session controller", "error", err)
		return
	}
	defer c.Close()

	unsubscribe := c.Subscribe(func(route router.ResolvedRoute) {
		page, err := a.Views.Render(ctx, route)
		if err != nil {
			logger.Error("render failed", "view", route.ViewID, "error", err)
			return
		}
		if err := conn.Render(route, page.Title); err != nil {
			logger.Debug("render not delivered", "path", route.Path, "error", err)
		}
	})
	defer unsubscribe()

	if err := c.Start(ctx); err != nil {
		logger.Warn("session start", "error", err)
		return
	}
	<-ctx.Done()
}

// BridgeHandler returns the history bridge endpoint for this application.
func (a *App) BridgeHandler() *wsbridge.Handler {
	cfg := wsbridge.Config{
		HelloTimeout: a.Config.Bridge.HelloTimeout,
		Rate:         rate.Limit(a.Config.Bridge.Rate),
		Burst:        a.Config.Bridge.Burst,
		Logger:       a.Logger.With("component", "wsbridge"),
	}
	if len(a.Config.Server.AllowedOrigins) > 0 {
		cfg.CheckOrigin = wsbridge.AllowOrigins(a.Config.Server.AllowedOrigins...)
	}
	return wsbridge.NewHandler(cfg, a.Session)
}

type langKey struct{}

// WithLanguage attaches the preferred title language to ctx.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// Language returns the title language attached to ctx, or "".
func Language(ctx context.Context) string {
	lang, _ := ctx.Value(langKey{}).(string)
	return lang
}

// Localize is HTTP middleware that picks the title language from the
// "lang" query parameter or the Accept-Language header.
func (a *App) Localize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.URL.Query().Get("lang")
		if accept == "" {
			accept = r.Header.Get("Accept-Language")
		}
		if accept != "" {
			tag := a.Titles.Match(accept)
			r = r.WithContext(WithLanguage(r.Context(), tag.String()))
		}
		next.ServeHTTP(w, r)
	})
}
