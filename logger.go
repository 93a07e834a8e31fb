package bdispatch

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogHandlerError(route RouteKey, err error)
	LogImplicitFlushError(err error)
	LogRouteReplaced(route RouteKey)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogHandlerError(route RouteKey, err error) {
	l.Logger.Printf("bdispatch: handler error on %s: %s", route, err)
}

func (l stdLogger) LogImplicitFlushError(err error) {
	l.Logger.Printf("bdispatch: error while flushing implicitly: %s", err)
}

func (l stdLogger) LogRouteReplaced(route RouteKey) {
	l.Logger.Printf("bdispatch: route %s registered twice, last registration wins", route)
}

// NewStdLogger adapts a standard library logger. A nil logger uses [log.Default].
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}

	return stdLogger{l}
}

// TestLogger counts log calls and forwards them to the test log.
type TestLogger struct {
	tb testing.TB

	NumLogHandlerError       int64
	NumLogImplicitFlushError int64
	NumLogRouteReplaced      int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogHandlerError(route RouteKey, err error) {
	atomic.AddInt64(&l.NumLogHandlerError, 1)
	l.tb.Logf("bdispatch: handler error on %s: %s", route, err)
}

func (l *TestLogger) LogImplicitFlushError(err error) {
	atomic.AddInt64(&l.NumLogImplicitFlushError, 1)
	l.tb.Logf("bdispatch: error while flushing implicitly: %s", err)
}

func (l *TestLogger) LogRouteReplaced(route RouteKey) {
	atomic.AddInt64(&l.NumLogRouteReplaced, 1)
	l.tb.Logf("bdispatch: route %s registered twice", route)
}

var _ Logger = &TestLogger{}
