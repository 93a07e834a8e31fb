// Package bdapp runs a [bdispatch.Engine] as a complete service: environment parsing, structured
// logging, OpenTelemetry tracing, request ids and graceful shutdown, wired with fx.
//
// # Overview
//
// A complete application is created in a single call:
//
//	bdapp.NewApp[Env](func(e *bdispatch.Engine, h *Handlers) {
//	    e.HandleFunc("GET", "/items", h.ListItems, bdispatch.Query("page"))
//	},
//	    bdapp.WithController(NewAdminController),
//	    bdapp.WithFilter("/admin", RequireAdmin()),
//	    bdapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bdapp.BaseEnvironment
//	    MainTableName string `env:"MAIN_TABLE_NAME,required"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable           | Required | Default  | Description                                     |
//	|--------------------|----------|----------|-------------------------------------------------|
//	| BD_HOST            | No       | -        | Host the HTTP server binds to                   |
//	| BD_PORT            | Yes      | -        | Port the HTTP server listens on                 |
//	| BD_SERVICE_NAME    | Yes      | -        | Service name for logging and tracing            |
//	| BD_LOG_LEVEL       | No       | info     | Log level (debug, info, warn, error)            |
//	| BD_OTEL_EXPORTER   | No       | stdout   | Trace exporter: "stdout", "xrayudp" or "none"   |
//	| BD_MAX_BODY_BYTES  | No       | 65536    | Request body aggregation limit                  |
//	| BD_REQUEST_TIMEOUT | No       | 0s       | Per-request dispatch timeout, 0 disables it     |
//	| BD_IDLE_TIMEOUT    | No       | 60s      | Keep-alive idle timeout                         |
//	| BD_CLOSE_ON_STATUS | No       | 500-599  | Statuses that close the connection              |
//	| BD_HEALTH_PATH     | No       | /healthz | Path of the GET health route                    |
//
// # Request Scope
//
// Every app installs a filter on all paths that assigns a request id (the inbound X-Request-Id
// header or a new UUID) and echoes it on the response. Handlers get a request correlated logger
// with [Log], the id with [RequestID] and the server span with [Span]:
//
//	func (h *Handlers) ListItems(ctx context.Context, args bdispatch.Args) (any, error) {
//	    bdapp.Log(ctx).Info("listing items", zap.String("page", args.At(0).String()))
//	    // ...
//	}
//
// # Runtime
//
// [Runtime] provides access to app-scoped dependencies and should be injected into handler and
// controller constructors via fx:
//
//   - [Runtime.Env] returns the typed environment configuration
//   - [Runtime.Routes] lists the registered routes
//
// # Lifecycle
//
// Routes and filters can be registered by the routing function, by controllers added with
// [WithController] and by [WithFilter]. When the app starts the engine is frozen, the route table
// is logged at debug level and the server starts listening. Stopping the app shuts the server down
// gracefully and flushes the tracer provider.
package bdapp
