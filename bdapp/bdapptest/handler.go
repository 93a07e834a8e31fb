package bdapptest

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/advdv/bdispatch"
)

// Serve dispatches req on the engine through a default adapter and returns the recorded
// response. Serving freezes the engine.
func Serve(engine *bdispatch.Engine, req *http.Request, opts ...bdispatch.AdapterOption) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.Adapter(opts...).ServeHTTP(rec, req)

	return rec
}

// CallHandler invokes a handler with arguments bound from req and its body, as the dispatcher
// would, and returns the recorded response. It panics when the handler fails.
func CallHandler(h bdispatch.HandlerDescriptor, req *http.Request) *httptest.ResponseRecorder {
	engine := bdispatch.NewEngine()
	engine.Handle(req.Method, req.URL.Path, h)

	rec := httptest.NewRecorder()
	w := bdispatch.NewResponseWriter(rec, -1)
	defer w.Free()

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	if err := engine.Dispatcher().Dispatch(w, req, body); err != nil {
		panic("bdapptest: handler returned error: " + err.Error())
	}

	if err := w.FlushBuffer(); err != nil {
		panic("bdapptest: FlushBuffer failed: " + err.Error())
	}

	return rec
}
