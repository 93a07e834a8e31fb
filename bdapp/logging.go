package bdapp

import (
	"github.com/advdv/bdispatch"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// Uses JSON encoding with ISO8601 timestamps, BD_LOG_LEVEL controls the level.
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", env.serviceName())), nil
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogHandlerError(route bdispatch.RouteKey, err error) {
	l.Logger.Error("handler error", zap.String("route", string(route)), zap.Error(err))
}

func (l zapLogger) LogImplicitFlushError(err error) {
	l.Logger.Error("error while flushing implicitly", zap.Error(err))
}

func (l zapLogger) LogRouteReplaced(route bdispatch.RouteKey) {
	l.Logger.Warn("route registered twice, last registration wins", zap.String("route", string(route)))
}

func newZapDispatchLogger(l *zap.Logger) bdispatch.Logger {
	return zapLogger{l.Named("bdispatch").Named("bdapp")}
}
