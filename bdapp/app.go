package bdapp

import (
	"context"
	"net/http"

	"github.com/advdv/bdispatch"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	EngineConfig
	FxOptions []fx.Option
}

// EngineConfig holds the app-level filters and the message converter of the engine.
type EngineConfig struct {
	Filters   []bdispatch.FilterBinding
	Converter bdispatch.MessageConverter
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom health check handler.
// If not set, a default handler returning "ok" is used.
func WithHealthHandler(h bdispatch.HandlerFunc) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// WithFallback sets the handler for requests that no route owns. Defaults to a 404.
func WithFallback(h http.Handler) Option {
	return func(c *AppConfig) {
		c.Fallback = h
	}
}

// WithFilter binds a filter to a path prefix. Filters run in the order of the options, after the
// request scope filter that every app installs.
func WithFilter(prefix string, f bdispatch.Filter) Option {
	return func(c *AppConfig) {
		c.Filters = append(c.Filters, bdispatch.FilterBinding{Prefix: prefix, Filter: f})
	}
}

// WithConverter replaces the JSON message converter.
func WithConverter(conv bdispatch.MessageConverter) Option {
	return func(c *AppConfig) {
		c.Converter = conv
	}
}

// WithController registers a constructor for a [bdispatch.Controller]. The constructor may request
// any type provided to the app; the controller is mounted on the engine before the server starts.
//
//	bdapp.WithController(example.NewHelloController)
func WithController(constructor any) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fx.Provide(fx.Annotate(constructor,
			fx.As(new(bdispatch.Controller)),
			fx.ResultTags(`group:"controllers"`))))
	}
}

// NewEngine creates the engine with the request scope filter followed by the configured filters.
func NewEngine(logger *zap.Logger, cfg EngineConfig) *bdispatch.Engine {
	engine := bdispatch.NewEngineWith(newZapDispatchLogger(logger), cfg.Converter)
	engine.Use("", withRequestScope(logger))

	for _, b := range cfg.Filters {
		engine.Use(b.Prefix, b.Filter)
	}

	return engine
}

type mountParams struct {
	fx.In

	Engine      *bdispatch.Engine
	Controllers []bdispatch.Controller `group:"controllers"`
}

func mountControllers(p mountParams) {
	for _, c := range p.Controllers {
		p.Engine.Mount(c)
	}
}

// FxOptions returns the fx options that make up the app. [NewApp] and the test helpers build the
// same graph from it.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 14+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Supply(cfg.ServerConfig),
		fx.Supply(cfg.EngineConfig),
		fx.Provide(NewEngine),
		fx.Provide(NewServer),
		fx.Provide(func(e E, engine *bdispatch.Engine) *Runtime[E] { return NewRuntime(e, engine) }),
		fx.Invoke(routing),
		fx.Invoke(mountControllers),
		fx.Invoke(startServerHook),
	}...)

	return append(baseOpts, cfg.FxOptions...)
}

// NewApp creates a batteries-included app with dependency injection.
//
// The routing function can request any types that are provided via fx options.
// At minimum, it should accept *bdispatch.Engine to register routes and filters.
//
// Example:
//
//	bdapp.NewApp[Env](func(e *bdispatch.Engine, h *Handlers) {
//	    e.HandleFunc("GET", "/items", h.ListItems, bdispatch.Query("page"))
//	},
//	    bdapp.WithController(NewAdminController),
//	    bdapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](routing, opts...)...),
	}
}

// Err returns the error encountered while building the app, if any.
func (a *App) Err() error { return a.app.Err() }

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application and blocks until ctx is done, then stops it.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
