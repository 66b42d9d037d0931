package logging

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process logger. Library packages take a plain *zap.Logger;
// only the command layer builds one of these.
type Logger struct {
	*zap.Logger
}

// NewLogger builds a console logger on stderr at the named level. Caller
// and stack information are only recorded at debug level.
func NewLogger(level string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableCaller = lvl > zapcore.DebugLevel
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return &Logger{logger}, nil
}

// WithInvocation tags every entry with a fresh invocation id so the lines of
// one command run can be grouped.
func (l *Logger) WithInvocation(command string) *zap.Logger {
	return l.With(
		zap.String("invocation_id", uuid.New().String()),
		zap.String("command", command),
	)
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
