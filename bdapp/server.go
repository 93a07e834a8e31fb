package bdapp

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/advdv/bdispatch"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler bdispatch.HandlerFunc
	Fallback      http.Handler
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Engine     *bdispatch.Engine
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewAdapterOptions translates the environment into adapter options. An invalid
// BD_CLOSE_ON_STATUS expression fails startup.
func NewAdapterOptions(env Environment, cfg ServerConfig) ([]bdispatch.AdapterOption, error) {
	closeOn, err := bdispatch.ParseStatusSet(env.closeOnStatus())
	if err != nil {
		return nil, errors.Wrap(err, "invalid BD_CLOSE_ON_STATUS")
	}

	opts := []bdispatch.AdapterOption{
		bdispatch.WithMaxBodyBytes(env.maxBodyBytes()),
		bdispatch.WithRequestTimeout(env.requestTimeout()),
		bdispatch.WithCloseOnStatus(closeOn),
	}

	if cfg.Fallback != nil {
		opts = append(opts, bdispatch.WithNext(cfg.Fallback))
	}

	return opts, nil
}

// NewServer creates an HTTP server serving the engine through the adapter.
func NewServer(params ServerParams, cfg ServerConfig) (*http.Server, error) {
	// Tracing is disabled for this path to avoid noisy traces from readiness probes.
	healthPath := params.Env.healthPath()
	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}

	params.Engine.HandleFunc(http.MethodGet, healthPath, healthHandler)

	opts, err := NewAdapterOptions(params.Env, cfg)
	if err != nil {
		return nil, err
	}

	handler := withTracing(params.TracerProv, params.Propagator, params.Env.serviceName(), healthPath)(
		params.Engine.Adapter(opts...))

	tc := TimeoutConfig{RequestTimeout: params.Env.requestTimeout(), IdleTimeout: params.Env.idleTimeout()}
	readHeaderTimeout, readTimeout, writeTimeout, idleTimeout := tc.ServerTimeouts()

	return &http.Server{
		Addr:              net.JoinHostPort(params.Env.host(), strconv.Itoa(params.Env.port())),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          zap.NewStdLog(params.Logger.Named("http")),
	}, nil
}

// startServerHook registers lifecycle hooks for the HTTP server. Registration ends when the
// server starts, the route table is logged at that point.
func startServerHook(lc fx.Lifecycle, server *http.Server, engine *bdispatch.Engine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			engine.Freeze()

			for _, route := range engine.Routes() {
				logger.Debug("route",
					zap.String("key", string(route.Key)),
					zap.String("handler", route.Handler.Identity()))
			}

			ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", server.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", server.Addr)
			}

			logger.Info("starting server", zap.String("addr", ln.Addr().String()),
				zap.Int("routes", len(engine.Routes())), zap.Int("filters", len(engine.Filters())))

			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

func defaultHealthHandler(context.Context, bdispatch.Args) (any, error) {
	return "ok", nil
}
