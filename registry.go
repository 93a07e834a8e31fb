package bdispatch

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/samber/lo"
)

// RouteKey is the lookup key of a route: "<lowercase-verb>:<path>".
type RouteKey string

// NewRouteKey builds the key for verb and path. The path is used as is.
func NewRouteKey(verb, path string) RouteKey {
	return RouteKey(strings.ToLower(verb) + ":" + path)
}

// Verb returns the lower-cased verb part of the key.
func (k RouteKey) Verb() string {
	verb, _, _ := strings.Cut(string(k), ":")
	return verb
}

// Path returns the path part of the key.
func (k RouteKey) Path() string {
	_, path, _ := strings.Cut(string(k), ":")
	return path
}

// Route maps a key to its handler descriptor.
type Route struct {
	Key     RouteKey
	Handler HandlerDescriptor
}

// Registry maps (verb, path) pairs to handler descriptors. It is populated during startup and
// read-only once frozen, so lookups need no locking.
type Registry struct {
	routes map[RouteKey]Route
	frozen atomic.Bool
}

// NewRegistry inits an empty registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[RouteKey]Route)}
}

// Register inserts the route or replaces an existing route with the same key. Paths are opaque:
// "{id}" is matched literally. It reports whether an earlier registration was replaced.
func (r *Registry) Register(verb, path string, h HandlerDescriptor) (replaced bool) {
	if r.frozen.Load() {
		panic("bdispatch: cannot register after serving started")
	}

	if h.Invoke == nil {
		panic("bdispatch: nil handler for " + string(NewRouteKey(verb, path)))
	}

	h.Params = slices.Clone(h.Params)

	key := NewRouteKey(verb, path)
	_, replaced = r.routes[key]
	r.routes[key] = Route{Key: key, Handler: h}

	return replaced
}

// Resolve looks up the route for verb and a raw request uri. Anything from the first "?" in uri
// onwards is ignored. Matching is exact: there is no trailing-slash normalization or pattern
// matching.
func (r *Registry) Resolve(verb, uri string) (Route, bool) {
	if idx := strings.IndexByte(uri, '?'); idx >= 0 {
		uri = uri[:idx]
	}

	return r.Lookup(verb, uri)
}

// Lookup finds the route registered for exactly verb and path. Unlike [Registry.Resolve], a "?"
// in path is part of the path.
func (r *Registry) Lookup(verb, path string) (Route, bool) {
	route, ok := r.routes[NewRouteKey(verb, path)]

	return route, ok
}

// Routes returns all registered routes ordered by key.
func (r *Registry) Routes() []Route {
	routes := lo.Values(r.routes)
	slices.SortFunc(routes, func(a, b Route) int { return strings.Compare(string(a.Key), string(b.Key)) })

	return routes
}

// Len returns the number of registered routes.
func (r *Registry) Len() int { return len(r.routes) }

// Freeze makes any further registration panic.
func (r *Registry) Freeze() { r.frozen.Store(true) }
