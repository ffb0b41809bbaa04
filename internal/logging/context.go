package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-content-blocks/pkg/interfaces"
)

type contextKey string

const contextFieldsKey contextKey = "contentblocks.logging.fields"

// ContextWithFields returns a context carrying structured logging fields.
// Existing fields on the context are merged with the provided values.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}

	existing := ContextFields(ctx)
	merged := make(map[string]any, len(existing)+len(fields))
	maps.Copy(merged, existing)
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields extracts previously annotated logging fields from the context.
// The returned map is a copy.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return copied
}

// FromContext returns logger enriched with the fields stored on ctx.
func FromContext(ctx context.Context, logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		logger = NoOp()
	}
	if ctx == nil {
		return logger
	}
	return WithFields(logger.WithContext(ctx), ContextFields(ctx))
}

// WithFields attaches fields when logger implements interfaces.FieldsLogger
// and returns it unchanged otherwise. The map is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok || len(fields) == 0 {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}
