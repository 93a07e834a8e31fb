package bdapptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [bdapp.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [bdapp.BaseEnvironment] env vars to test defaults.
// Port is required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BD_HOST: "127.0.0.1"
//   - BD_SERVICE_NAME: "test"
//   - BD_LOG_LEVEL: "error"
//   - BD_OTEL_EXPORTER: "none"
//   - BD_HEALTH_PATH: "/healthz"
//
// Use the returned [Env] to override individual values:
//
//	bdapptest.SetBaseEnv(t, 18085).ServiceName("orders").RequestTimeout("2s")
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BD_HOST", "127.0.0.1")
	t.Setenv("BD_PORT", strconv.Itoa(port))
	t.Setenv("BD_SERVICE_NAME", "test")
	t.Setenv("BD_LOG_LEVEL", "error")
	t.Setenv("BD_OTEL_EXPORTER", "none")
	t.Setenv("BD_HEALTH_PATH", "/healthz")

	return &Env{t: t}
}

// ServiceName overrides BD_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BD_SERVICE_NAME", name)

	return e
}

// HealthPath overrides BD_HEALTH_PATH.
func (e *Env) HealthPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BD_HEALTH_PATH", path)

	return e
}

// RequestTimeout overrides BD_REQUEST_TIMEOUT.
func (e *Env) RequestTimeout(d string) *Env {
	e.t.Helper()
	e.t.Setenv("BD_REQUEST_TIMEOUT", d)

	return e
}

// MaxBodyBytes overrides BD_MAX_BODY_BYTES.
func (e *Env) MaxBodyBytes(n int) *Env {
	e.t.Helper()
	e.t.Setenv("BD_MAX_BODY_BYTES", strconv.Itoa(n))

	return e
}

// CloseOnStatus overrides BD_CLOSE_ON_STATUS.
func (e *Env) CloseOnStatus(expr string) *Env {
	e.t.Helper()
	e.t.Setenv("BD_CLOSE_ON_STATUS", expr)

	return e
}
