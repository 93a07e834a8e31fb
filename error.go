package bdispatch

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrRouteNotFound signals that no route owns the request. It is not a failure: the adapter
	// forwards such requests to its fallback handler without writing a response.
	ErrRouteNotFound = errors.New("bdispatch: route not found")

	// ErrAbsent is wrapped by a [BindingError] when an absent argument is coerced.
	ErrAbsent = errors.New("bdispatch: parameter is absent")

	// ErrAlreadyProceeded is returned when a continuation is proceeded more than once.
	ErrAlreadyProceeded = errors.New("bdispatch: continuation already proceeded")

	// ErrRequestTimeout is reported when a dispatch does not finish within the request timeout.
	ErrRequestTimeout = errors.New("bdispatch: request timed out")
)

// BindingError describes a declared parameter that could not be satisfied without silently
// defaulting, e.g. when coercing a value to an integer fails.
type BindingError struct {
	Param Param
	Err   error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("bind %s: %s", e.Param, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// HandlerError wraps any fault raised while running filters, binding parameters, invoking the
// handler or serializing its result. It is mapped to an empty 500 response.
type HandlerError struct {
	Route RouteKey
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handle %s: %s", e.Route, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// RouteOf returns the route key carried by err if it is or wraps a [*HandlerError].
func RouteOf(err error) (RouteKey, bool) {
	var herr *HandlerError
	if !errors.As(err, &herr) {
		return "", false
	}

	return herr.Route, true
}
