package bdispatch

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrBufferFull is returned when a write would grow the buffer past its limit.
var ErrBufferFull = errors.New("bdispatch: response buffer is full")

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// ResponseBuffer holds the status, headers and body of a response until it is flushed to the
// underlying writer. Headers are copied over on the first flush only.
type ResponseBuffer struct {
	resp   http.ResponseWriter
	header http.Header
	status int
	limit  int
	buf    *bytes.Buffer

	headerSent bool
	flushed    bool
}

// NewResponseWriter wraps resp in a buffered response. A negative limit disables the size limit.
func NewResponseWriter(resp http.ResponseWriter, limit int) *ResponseBuffer {
	return newBufferResponse(resp, limit)
}

func newBufferResponse(resp http.ResponseWriter, limit int) *ResponseBuffer {
	buf, _ := bufPool.Get().(*bytes.Buffer)
	buf.Reset()

	return &ResponseBuffer{
		resp:   resp,
		header: http.Header{},
		limit:  limit,
		buf:    buf,
	}
}

// Header returns the buffered header map.
func (w *ResponseBuffer) Header() http.Header { return w.header }

// WriteHeader records the status code. Only the first call has effect until the buffer is reset.
func (w *ResponseBuffer) WriteHeader(statusCode int) {
	if w.status != 0 {
		return
	}

	w.status = statusCode
}

// Write appends to the buffer, or fails with [ErrBufferFull] without writing anything.
func (w *ResponseBuffer) Write(p []byte) (int, error) {
	if w.limit >= 0 && w.buf.Len()+len(p) > w.limit {
		return 0, ErrBufferFull
	}

	if w.status == 0 {
		w.status = http.StatusOK
	}

	return w.buf.Write(p)
}

// Status returns the recorded status, defaulting to 200.
func (w *ResponseBuffer) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}

	return w.status
}

// Len returns the number of body bytes that are currently buffered.
func (w *ResponseBuffer) Len() int { return w.buf.Len() }

// Flushed reports whether anything has been written to the underlying writer.
func (w *ResponseBuffer) Flushed() bool { return w.flushed }

// Reset discards the buffered status, headers and body. It panics when the response was
// already (partially) flushed since those bytes cannot be taken back.
func (w *ResponseBuffer) Reset() {
	if w.flushed {
		panic("bdispatch: cannot reset response, already flushed")
	}

	w.header = http.Header{}
	w.status = 0
	w.buf.Reset()
}

// Unwrap returns the underlying writer so [http.ResponseController] can reach it.
func (w *ResponseBuffer) Unwrap() http.ResponseWriter { return w.resp }

// FlushBuffer writes the headers (once) and the buffered body to the underlying writer.
func (w *ResponseBuffer) FlushBuffer() error {
	w.flushed = true

	if !w.headerSent {
		dst := w.resp.Header()
		for k, v := range w.header {
			dst[k] = v
		}

		w.resp.WriteHeader(w.Status())
		w.headerSent = true
	}

	if w.buf.Len() < 1 {
		return nil
	}

	if _, err := w.resp.Write(w.buf.Bytes()); err != nil {
		return errors.Wrap(err, "write buffered body")
	}

	w.buf.Reset()

	return nil
}

// FlushError flushes the buffer and then the underlying writer. It is picked up by
// [http.ResponseController].
func (w *ResponseBuffer) FlushError() error {
	if err := w.FlushBuffer(); err != nil {
		return err
	}

	if err := http.NewResponseController(w.resp).Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return errors.Wrap(err, "flush underlying writer")
	}

	return nil
}

// Flush implements [http.Flusher].
func (w *ResponseBuffer) Flush() { _ = w.FlushError() }

// Free returns the buffer to the pool. The response must not be used afterwards.
func (w *ResponseBuffer) Free() {
	if w.buf == nil {
		return
	}

	bufPool.Put(w.buf)
	w.buf = nil
}

var (
	_ ResponseWriter = &ResponseBuffer{}
	_ http.Flusher   = &ResponseBuffer{}
)
