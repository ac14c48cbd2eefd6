package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	loggerMu   sync.RWMutex
)

// Logger returns the process-wide logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		loggerMu.Lock()
		if logger == nil {
			logger = zap.NewNop()
		}
		loggerMu.Unlock()
	})
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger configures the process-wide logger.
// A nil logger restores the no-op default.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// Config selects how New builds a logger.
type Config struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// New builds a zap logger for cfg. An empty level means "info".
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, err
		}
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// Warnf logs a "{}"-style template at warn level.
func Warnf(template string, args ...any) {
	l := Logger()
	if ce := l.Check(zapcore.WarnLevel, ""); ce != nil {
		ce.Message = Format(template, args...)
		ce.Write()
	}
}

// WarnWith is Warnf with structured fields attached to the entry.
func WarnWith(fields []zap.Field, template string, args ...any) {
	l := Logger()
	if ce := l.Check(zapcore.WarnLevel, ""); ce != nil {
		ce.Message = Format(template, args...)
		ce.Write(fields...)
	}
}

// Debugf logs a "{}"-style template at debug level.
func Debugf(template string, args ...any) {
	l := Logger()
	if ce := l.Check(zapcore.DebugLevel, ""); ce != nil {
		ce.Message = Format(template, args...)
		ce.Write()
	}
}
