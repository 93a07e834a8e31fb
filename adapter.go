package bdispatch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	intervalexpr "github.com/MawKKe/integer-interval-expressions-go"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/http/httpguts"
)

// DefaultMaxBodyBytes bounds the aggregated request body.
const DefaultMaxBodyBytes = 64 * 1024

// ContinuePolicy decides whether a request that sent "Expect: 100-continue" may send its body.
type ContinuePolicy func(r *http.Request) bool

// StatusSet reports whether a response status belongs to the set.
type StatusSet func(status int) bool

// ServerErrorStatuses matches 500-599.
func ServerErrorStatuses(status int) bool { return status >= 500 && status <= 599 }

// ParseStatusSet parses an interval expression such as "500-599" or "429,500-" into a set.
func ParseStatusSet(expr string) (StatusSet, error) {
	e, err := intervalexpr.ParseExpression(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse status expression %q", expr)
	}

	return e.Matches, nil
}

// AdapterConfig configures an [Adapter].
type AdapterConfig struct {
	// MaxBodyBytes bounds the aggregated request body. Larger requests get a 413.
	MaxBodyBytes int64

	// ResponseLimit bounds the buffered response body, -1 disables the limit.
	ResponseLimit int

	// Next receives requests that no route owns, with the body still readable.
	Next http.Handler

	// Continue decides on "Expect: 100-continue" requests. Accepting lets net/http send the
	// interim 100 response once the body is read.
	Continue ContinuePolicy

	// CloseOnStatus names statuses whose responses always close the connection.
	CloseOnStatus StatusSet

	// RequestTimeout bounds a single dispatch when positive.
	RequestTimeout time.Duration
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithNext sets the handler for requests that no route owns.
func WithNext(h http.Handler) AdapterOption {
	return func(c *AdapterConfig) { c.Next = h }
}

// WithMaxBodyBytes sets the request body aggregation limit.
func WithMaxBodyBytes(n int64) AdapterOption {
	return func(c *AdapterConfig) { c.MaxBodyBytes = n }
}

// WithResponseLimit sets the buffered response size limit.
func WithResponseLimit(n int) AdapterOption {
	return func(c *AdapterConfig) { c.ResponseLimit = n }
}

// WithContinuePolicy sets the policy for "Expect: 100-continue" requests.
func WithContinuePolicy(p ContinuePolicy) AdapterOption {
	return func(c *AdapterConfig) { c.Continue = p }
}

// WithCloseOnStatus sets the statuses that force the connection to close.
func WithCloseOnStatus(s StatusSet) AdapterOption {
	return func(c *AdapterConfig) { c.CloseOnStatus = s }
}

// WithRequestTimeout bounds each dispatch. Timed out requests get an empty 503 and the
// connection is closed.
func WithRequestTimeout(d time.Duration) AdapterOption {
	return func(c *AdapterConfig) { c.RequestTimeout = d }
}

// Adapter is the boundary between net/http and the dispatcher. It aggregates the request body,
// dispatches, and turns the outcome into a response with a correct Content-Length and an
// explicit connection decision.
type Adapter struct {
	disp   *Dispatcher
	logs   Logger
	cfg    AdapterConfig
	freeze func()
}

// NewAdapter inits an adapter for the dispatcher.
func NewAdapter(disp *Dispatcher, logs Logger, opts ...AdapterOption) *Adapter {
	cfg := AdapterConfig{
		MaxBodyBytes:  DefaultMaxBodyBytes,
		ResponseLimit: -1,
		Next:          http.NotFoundHandler(),
		Continue:      func(*http.Request) bool { return true },
		CloseOnStatus: ServerErrorStatuses,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if logs == nil {
		logs = NewStdLogger(nil)
	}

	return &Adapter{disp: disp, logs: logs, cfg: cfg, freeze: func() {}}
}

// ServeHTTP implements http.Handler.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.freeze()

	if expectsContinue(r) && !a.cfg.Continue(r) {
		writeEmpty(w, http.StatusExpectationFailed)
		return
	}

	body, err := a.aggregate(w, r)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeEmpty(w, http.StatusRequestEntityTooLarge)
			return
		}

		writeEmpty(w, http.StatusBadRequest)
		return
	}

	bresp := NewResponseWriter(w, a.cfg.ResponseLimit)

	err = a.dispatch(bresp, r, body)
	switch {
	case errors.Is(err, ErrRouteNotFound):
		bresp.Free()

		r.Body = io.NopCloser(bytes.NewReader(body))
		a.cfg.Next.ServeHTTP(w, r)
	case errors.Is(err, ErrRequestTimeout):
		a.logs.LogHandlerError(NewRouteKey(r.Method, r.URL.Path), err)
		a.fail(bresp, http.StatusServiceUnavailable)
	case err != nil:
		route, _ := RouteOf(err)
		a.logs.LogHandlerError(route, err)
		a.fail(bresp, http.StatusInternalServerError)
	default:
		a.finish(bresp, wantsKeepAlive(r))
	}
}

func (a *Adapter) dispatch(bresp *ResponseBuffer, r *http.Request, body []byte) error {
	if a.cfg.RequestTimeout <= 0 {
		return a.disp.Dispatch(bresp, r, body)
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.cfg.RequestTimeout)
	defer cancel()

	// the handler writes into a detached buffer so an abandoned dispatch can never reach w.
	detached := &sink{header: http.Header{}}
	done := make(chan error, 1)

	go func() {
		private := NewResponseWriter(detached, a.cfg.ResponseLimit)
		defer private.Free()

		err := a.disp.Dispatch(private, r.WithContext(ctx), body)
		if err == nil {
			err = private.FlushBuffer()
		}

		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}

		return detached.replay(bresp)
	case <-ctx.Done():
		return errors.Wrap(ErrRequestTimeout, ctx.Err().Error())
	}
}

func (a *Adapter) aggregate(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.cfg.MaxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "aggregate request body")
	}

	return body, nil
}

// finish sets the final Content-Length and connection headers, then flushes.
func (a *Adapter) finish(bresp *ResponseBuffer, keepAlive bool) {
	defer bresp.Free()

	if !bresp.Flushed() {
		if a.cfg.CloseOnStatus(bresp.Status()) {
			keepAlive = false
		}

		bresp.Header().Set("Content-Length", strconv.Itoa(bresp.Len()))

		if keepAlive {
			bresp.Header().Set("Connection", "keep-alive")
		} else {
			bresp.Header().Set("Connection", "close")
		}
	}

	if err := bresp.FlushBuffer(); err != nil {
		a.logs.LogImplicitFlushError(err)
	}
}

// fail replaces the buffered response with an empty one of the given status and closes the
// connection after it is written. A response that was already flushed cannot be replaced, so
// the connection is aborted instead.
func (a *Adapter) fail(bresp *ResponseBuffer, status int) {
	if bresp.Flushed() {
		bresp.Free()
		panic(http.ErrAbortHandler)
	}

	bresp.Reset()
	bresp.WriteHeader(status)
	a.finish(bresp, false)
}

func writeEmpty(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Length", "0")
	w.Header().Set("Connection", "close")
	w.WriteHeader(status)
}

func expectsContinue(r *http.Request) bool {
	return httpguts.HeaderValuesContainsToken(r.Header["Expect"], "100-continue")
}

// wantsKeepAlive applies HTTP/1.x defaults: 1.1 keeps the connection unless told to close, 1.0
// closes unless asked to keep it.
func wantsKeepAlive(r *http.Request) bool {
	conn := r.Header["Connection"]
	if r.ProtoAtLeast(1, 1) {
		return !r.Close && !httpguts.HeaderValuesContainsToken(conn, "close")
	}

	return httpguts.HeaderValuesContainsToken(conn, "keep-alive")
}

// sink is a detached http.ResponseWriter that records a response for later replay.
type sink struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (s *sink) Header() http.Header { return s.header }

func (s *sink) WriteHeader(status int) {
	if s.status == 0 {
		s.status = status
	}
}

func (s *sink) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}

	return s.body.Write(p)
}

func (s *sink) replay(w ResponseWriter) error {
	for k, v := range s.header {
		w.Header()[k] = v
	}

	if s.status != 0 {
		w.WriteHeader(s.status)
	}

	if _, err := w.Write(s.body.Bytes()); err != nil {
		return errors.Wrap(err, "replay response")
	}

	return nil
}
