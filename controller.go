package bdispatch

import (
	"net/http"
	"path"
	"strings"
)

// Controller groups handlers that share an owner. Mounting a controller on an [Engine] calls
// Routes once, during startup.
type Controller interface {
	Routes(rs *Routes)
}

// ControllerFunc allows casting a function to implement [Controller].
type ControllerFunc func(rs *Routes)

// Routes implements the [Controller] interface.
func (f ControllerFunc) Routes(rs *Routes) { f(rs) }

// Routes registers the handlers of a single controller, optionally below a shared prefix.
type Routes struct {
	engine *Engine
	owner  string
	prefix string
}

// Owner returns the name that handler descriptors registered through rs carry.
func (rs *Routes) Owner() string { return rs.owner }

// Prefix returns a builder that registers below p, relative to the current prefix.
func (rs *Routes) Prefix(p string) *Routes {
	return &Routes{engine: rs.engine, owner: rs.owner, prefix: joinPrefix(rs.prefix, p)}
}

// Handle registers fn for verb on the prefixed path. The method name identifies the handler
// in logs and route listings.
func (rs *Routes) Handle(verb, p, method string, fn HandlerFunc, params ...Param) {
	desc := Describe(method, fn, params...)
	desc.Owner = rs.owner

	rs.engine.Handle(verb, joinPrefix(rs.prefix, p), desc)
}

// Get registers a GET handler.
func (rs *Routes) Get(p, method string, fn HandlerFunc, params ...Param) {
	rs.Handle(http.MethodGet, p, method, fn, params...)
}

// Post registers a POST handler.
func (rs *Routes) Post(p, method string, fn HandlerFunc, params ...Param) {
	rs.Handle(http.MethodPost, p, method, fn, params...)
}

// Put registers a PUT handler.
func (rs *Routes) Put(p, method string, fn HandlerFunc, params ...Param) {
	rs.Handle(http.MethodPut, p, method, fn, params...)
}

// Delete registers a DELETE handler.
func (rs *Routes) Delete(p, method string, fn HandlerFunc, params ...Param) {
	rs.Handle(http.MethodDelete, p, method, fn, params...)
}

// Use binds a filter below the controller's prefix.
func (rs *Routes) Use(p string, f Filter) {
	rs.engine.Use(joinPrefix(rs.prefix, p), f)
}

// joinPrefix concatenates two path parts with exactly one slash between them. A trailing slash
// on p is kept since route paths match exactly.
func joinPrefix(prefix, p string) string {
	if prefix == "" {
		return p
	}

	if p == "" {
		return prefix
	}

	joined := path.Join(prefix, p)
	if strings.HasSuffix(p, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}

	return joined
}
