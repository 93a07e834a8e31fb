package bdapp

import (
	"context"
	"time"
)

// DefaultReadHeaderTimeout bounds reading the request headers.
const DefaultReadHeaderTimeout = 10 * time.Second

// DefaultWriteBuffer is added to the request timeout for the server's read and write timeouts so
// the adapter's 503 response can still be written when a dispatch times out.
const DefaultWriteBuffer = time.Second

// TimeoutConfig holds timeout configuration for the HTTP server.
type TimeoutConfig struct {
	// RequestTimeout bounds a single dispatch, zero disables it.
	RequestTimeout time.Duration

	// IdleTimeout bounds how long a kept-alive connection waits for its next request.
	IdleTimeout time.Duration

	// WriteBuffer is added to RequestTimeout. Defaults to DefaultWriteBuffer.
	WriteBuffer time.Duration
}

// ServerTimeouts returns the http.Server timeout values. Without a request timeout the read and
// write timeouts stay unbounded and only the header and idle timeouts apply.
func (tc TimeoutConfig) ServerTimeouts() (readHeaderTimeout, readTimeout, writeTimeout, idleTimeout time.Duration) {
	readHeaderTimeout = DefaultReadHeaderTimeout
	idleTimeout = tc.IdleTimeout

	if tc.RequestTimeout <= 0 {
		return readHeaderTimeout, 0, 0, idleTimeout
	}

	buffer := tc.WriteBuffer
	if buffer <= 0 {
		buffer = DefaultWriteBuffer
	}

	readHeaderTimeout = min(readHeaderTimeout, tc.RequestTimeout)
	readTimeout = tc.RequestTimeout + buffer
	writeTimeout = tc.RequestTimeout + buffer

	return readHeaderTimeout, readTimeout, writeTimeout, idleTimeout
}

// RequestRemainingTime returns the duration until the request context deadline.
// Returns 0 if no deadline is set or if the deadline has passed.
func RequestRemainingTime(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}

	return max(time.Until(deadline), 0)
}
