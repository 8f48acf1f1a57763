package logger

import "go.uber.org/zap"

// Logger wraps a zap logger used across the engine.
type Logger struct {
	*zap.Logger
}

// NewLogger creates a new development logger.
func NewLogger() (*Logger, error) {
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: zapLogger}, nil
}

// NewProductionLogger creates a new production logger with JSON output.
func NewProductionLogger() (*Logger, error) {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: zapLogger}, nil
}

// Sync flushes any buffered log entries. Safe to call on a nil inner logger.
func (l *Logger) Sync() error {
	if l.Logger == nil {
		return nil
	}

	return l.Logger.Sync()
}
