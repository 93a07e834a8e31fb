// Package bdispatch routes HTTP requests to registered handlers by exact (verb, path) match, binds
// declared parameters from the request, runs path-prefix filters and writes the converted result as
// a buffered response.
//
// # Overview
//
// Routes are registered once during startup and frozen when the first request is served. A route
// key is the lower-cased verb and the path, "get:/api/hello". Resolution strips the query string
// and matches the rest literally: there are no patterns, "{id}" in a registered path matches only
// the text "{id}".
//
//	engine := bdispatch.NewEngine()
//	engine.HandleFunc("GET", "/api/hello", func(ctx context.Context, args bdispatch.Args) (any, error) {
//	    return "hello " + args.At(0).String(), nil
//	}, bdispatch.Cookie("user"))
//
//	http.ListenAndServe(":8080", engine.Adapter())
//
// # Handlers and Parameters
//
// A handler is a [HandlerFunc] paired with an ordered list of [Param] descriptors in a
// [HandlerDescriptor]. For each request the descriptors are bound, in order, into [Args]. A source
// that does not provide a value yields an absent [Arg]; binding itself never fails. Coercion is up
// to the handler and fails loudly:
//
//	n, err := args.At(0).Int() // *BindingError wrapping ErrAbsent or the parse error
//
// Path parameters are positional: Path("0") is the first non-empty segment of the request path.
//
// The returned value becomes the response body. Strings and byte slices are written as is, nil
// writes nothing, everything else goes through the [MessageConverter] ([JSONConverter] by default).
//
// # Controllers
//
// Related handlers are grouped by a [Controller] and mounted on the engine. The controller's type
// becomes the owner of its routes, which shows up in logs and route listings:
//
//	func (c *Greeter) Routes(rs *bdispatch.Routes) {
//	    api := rs.Prefix("/api")
//	    api.Get("/hello", "Hello", c.hello, bdispatch.Cookie("user"))
//	    api.Post("/hello", "Hello2", c.hello2, bdispatch.Form("liu"))
//	}
//
// Registering the same verb and path twice keeps the last registration. The replacement is
// reported through [Logger.LogRouteReplaced].
//
// # Filters
//
// Filters are bound to path prefixes and run in registration order. A binding matches when the
// request URI, the decoded path plus the raw query, is strictly longer than the prefix and starts
// with it. Routes are looked up with the same decoded path, so escaping a character of the prefix
// does not skip its filters. Every matching filter
// receives a [Continuation]; proceeding runs the next matching filter, and after the last one the
// handler. A filter that returns without proceeding short-circuits the request. The handler runs
// at most once per request.
//
// # Buffered Responses
//
// Handlers and filters write to a [ResponseWriter] that buffers status, headers and body. This
// allows the adapter to set an exact Content-Length and to discard a partial response when a
// handler fails. [ResponseWriter.FlushBuffer] writes through early, after which the response can
// no longer be replaced.
//
// # Adapter
//
// [Adapter] is the net/http boundary. It aggregates the request body (64KiB by default), dispatches,
// and decides the connection: keep-alive when the client asked for it, close otherwise. Failures
// map to empty responses that close the connection:
//
//   - handler, filter, binding or serialization errors and panics: 500
//   - request body over the limit: 413
//   - rejected "Expect: 100-continue": 417
//   - request timeout: 503
//
// Requests without a matching route are not failures. The adapter writes nothing and hands them to
// the next handler (see [WithNext]) with the body still readable.
package bdispatch
