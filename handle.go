package bdispatch

import (
	"context"
	"net/http"
)

// ResponseWriter implements the http.ResponseWriter but the underlying bytes are buffered. This allows
// the dispatcher to compute the final Content-Length and to replace the response entirely on failure.
type ResponseWriter interface {
	http.ResponseWriter
	Reset()
	Free()
	FlushBuffer() error
}

// HandlerFunc is the resolved entry point of a route. It receives the arguments bound from the
// handler's parameter descriptors and returns a value that is converted into the response body.
type HandlerFunc func(ctx context.Context, args Args) (any, error)

// HandlerDescriptor binds a route to executable logic and its parameter shape. It is built once
// at registration and never modified afterwards.
type HandlerDescriptor struct {
	Owner  string
	Method string
	Params []Param
	Invoke HandlerFunc
}

// Describe builds a descriptor for a function without an owning controller.
func Describe(method string, fn HandlerFunc, params ...Param) HandlerDescriptor {
	return HandlerDescriptor{Method: method, Params: params, Invoke: fn}
}

// Identity returns "Owner.Method", or just the method for ownerless handlers.
func (h HandlerDescriptor) Identity() string {
	if h.Owner == "" {
		return h.Method
	}

	return h.Owner + "." + h.Method
}
