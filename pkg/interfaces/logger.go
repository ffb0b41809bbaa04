package interfaces

import "context"

// Logger is the leveled logger threaded through hydration, catalog sync,
// showcase generation and the command handlers. A go-logger logger
// satisfies it as is.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger is implemented by loggers that carry structured fields.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// LoggerProvider hands out one logger per module name, for example
// "contentblocks.hydration".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// LoggerProviderFunc adapts a function to LoggerProvider.
type LoggerProviderFunc func(name string) Logger

func (f LoggerProviderFunc) GetLogger(name string) Logger { return f(name) }
