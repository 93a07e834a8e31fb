package bdispatch

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Dispatcher resolves a request to its route, runs the filter chain and invokes the handler,
// writing the converted result into a buffered response.
type Dispatcher struct {
	registry *Registry
	filters  *FilterChain
	binder   *Binder
	conv     MessageConverter
}

// NewDispatcher inits a dispatcher over a populated registry and filter chain.
func NewDispatcher(registry *Registry, filters *FilterChain, conv MessageConverter) *Dispatcher {
	if conv == nil {
		conv = JSONConverter{}
	}

	return &Dispatcher{
		registry: registry,
		filters:  filters,
		binder:   NewBinder(conv),
		conv:     conv,
	}
}

// Dispatch serves r into w. The body is the already buffered request body; r.Body is never
// read. Routes are looked up with the decoded request path, the same form filters match on, so
// "/a%7Bb%7D" reaches a route registered as "/a{b}" and "/a%3Fb" never reaches "/a". It returns [ErrRouteNotFound] without touching w when no route matches,
// and a [*HandlerError] for any failure or panic past route resolution.
func (d *Dispatcher) Dispatch(w ResponseWriter, r *http.Request, body []byte) (err error) {
	route, ok := d.registry.Lookup(r.Method, r.URL.Path)
	if !ok {
		return ErrRouteNotFound
	}

	defer func() {
		if e := recover(); e != nil {
			err = &HandlerError{Route: route.Key, Err: errors.Newf("panic: %v", e)}
		}
	}()

	rc, err := NewRequestContext(r, body)
	if err != nil {
		return &HandlerError{Route: route.Key, Err: err}
	}

	defer rc.Close()

	terminal := ContinuationFunc(func() error { return d.invoke(route, rc, w) })

	if err := d.filters.Execute(rc, w, terminal); err != nil {
		return &HandlerError{Route: route.Key, Err: err}
	}

	return nil
}

func (d *Dispatcher) invoke(route Route, rc *RequestContext, w ResponseWriter) error {
	args := d.binder.Bind(route.Handler.Params, rc, w)

	res, err := route.Handler.Invoke(rc.Request.Context(), args)
	if err != nil {
		return errors.Wrapf(err, "invoke %s", route.Handler.Identity())
	}

	return d.write(w, res)
}

// write encodes textual results directly and delegates everything else to the converter.
func (d *Dispatcher) write(w ResponseWriter, res any) error {
	var data []byte

	switch v := res.(type) {
	case nil:
		return nil
	case string:
		if _, err := io.WriteString(w, v); err != nil {
			return errors.Wrap(err, "write result")
		}

		return nil
	case []byte:
		data = v
	default:
		b, err := d.conv.Serialize(v)
		if err != nil {
			return err
		}

		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", d.conv.ContentType())
		}

		data = b
	}

	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write result")
	}

	return nil
}
