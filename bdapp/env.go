package bdapp

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	host() string
	port() int
	serviceName() string
	logLevel() zapcore.Level
	otelExporter() string
	maxBodyBytes() int64
	requestTimeout() time.Duration
	idleTimeout() time.Duration
	closeOnStatus() string
	healthPath() string
}

// BaseEnvironment contains the environment variables every dispatch server reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Host         string        `env:"BD_HOST"`
	Port         int           `env:"BD_PORT,required"`
	ServiceName  string        `env:"BD_SERVICE_NAME,required"`
	LogLevel     zapcore.Level `env:"BD_LOG_LEVEL" envDefault:"info"`
	OtelExporter string        `env:"BD_OTEL_EXPORTER" envDefault:"stdout"`
	MaxBodyBytes int64         `env:"BD_MAX_BODY_BYTES" envDefault:"65536"`
	// RequestTimeout bounds a single dispatch, zero disables it.
	RequestTimeout time.Duration `env:"BD_REQUEST_TIMEOUT" envDefault:"0s"`
	IdleTimeout    time.Duration `env:"BD_IDLE_TIMEOUT" envDefault:"60s"`
	// CloseOnStatus is an interval expression of response statuses that close the connection.
	CloseOnStatus string `env:"BD_CLOSE_ON_STATUS" envDefault:"500-599"`
	HealthPath    string `env:"BD_HEALTH_PATH" envDefault:"/healthz"`
}

func (e BaseEnvironment) host() string                  { return e.Host }
func (e BaseEnvironment) port() int                     { return e.Port }
func (e BaseEnvironment) serviceName() string           { return e.ServiceName }
func (e BaseEnvironment) logLevel() zapcore.Level       { return e.LogLevel }
func (e BaseEnvironment) otelExporter() string          { return e.OtelExporter }
func (e BaseEnvironment) maxBodyBytes() int64           { return e.MaxBodyBytes }
func (e BaseEnvironment) requestTimeout() time.Duration { return e.RequestTimeout }
func (e BaseEnvironment) idleTimeout() time.Duration    { return e.IdleTimeout }
func (e BaseEnvironment) closeOnStatus() string         { return e.CloseOnStatus }
func (e BaseEnvironment) healthPath() string            { return e.HealthPath }

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}

		if e.maxBodyBytes() <= 0 {
			return e, errors.Newf("BD_MAX_BODY_BYTES must be positive, got %d", e.maxBodyBytes())
		}

		return e, nil
	}
}
