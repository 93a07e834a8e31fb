package bdispatch

import (
	"fmt"
	"log"
)

// Engine owns the route registry, the filter chain and the message converter. Routes and filters
// are registered during startup; the first served request freezes both.
type Engine struct {
	logs     Logger
	conv     MessageConverter
	registry *Registry
	filters  *FilterChain
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return NewEngineWith(NewStdLogger(log.Default()), JSONConverter{})
}

// NewEngineWith creates an engine with a custom logger and message converter.
func NewEngineWith(logs Logger, conv MessageConverter) *Engine {
	if conv == nil {
		conv = JSONConverter{}
	}

	return &Engine{
		logs:     logs,
		conv:     conv,
		registry: NewRegistry(),
		filters:  NewFilterChain(),
	}
}

// Use binds a filter to a path prefix. Filters run in the order they are added.
func (e *Engine) Use(prefix string, f Filter) {
	e.filters.Use(prefix, f)
}

// UseFunc binds a filter function to a path prefix.
func (e *Engine) UseFunc(prefix string, f FilterFunc) {
	e.Use(prefix, f)
}

// Handle registers a handler descriptor for verb and path. Re-registering a key replaces the
// earlier handler; the replacement is logged.
func (e *Engine) Handle(verb, path string, h HandlerDescriptor) {
	if e.registry.Register(verb, path, h) {
		e.logs.LogRouteReplaced(NewRouteKey(verb, path))
	}
}

// HandleFunc registers a function without an owning controller. The method identity defaults to
// the route key.
func (e *Engine) HandleFunc(verb, path string, fn HandlerFunc, params ...Param) {
	e.Handle(verb, path, Describe(string(NewRouteKey(verb, path)), fn, params...))
}

// Mount registers all routes of a controller. The controller's type name becomes the owner of
// its handler descriptors.
func (e *Engine) Mount(c Controller) {
	c.Routes(&Routes{engine: e, owner: fmt.Sprintf("%T", c)})
}

// Routes returns the registered routes ordered by key.
func (e *Engine) Routes() []Route { return e.registry.Routes() }

// Filters returns the filter bindings in registration order.
func (e *Engine) Filters() []FilterBinding { return e.filters.Bindings() }

// Freeze ends the registration phase. Later registrations panic.
func (e *Engine) Freeze() {
	e.registry.Freeze()
	e.filters.Freeze()
}

// Dispatcher returns a dispatcher over the engine's routes and filters.
func (e *Engine) Dispatcher() *Dispatcher {
	return NewDispatcher(e.registry, e.filters, e.conv)
}

// Adapter returns an http.Handler serving the engine. The engine is frozen on the first request.
func (e *Engine) Adapter(opts ...AdapterOption) *Adapter {
	a := NewAdapter(e.Dispatcher(), e.logs, opts...)
	a.freeze = e.Freeze

	return a
}
