// Package logctx carries the request or event scoped logger on a context.
package logctx

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
)

type loggerKey struct{}

func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the context logger, or nil.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

// FromOr never returns nil: a missing fallback becomes a no-op logger.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	if fallback == nil {
		return observability.NopLogger()
	}
	return fallback
}

// Enrich derives a logger from base with fields plus the trace_id and span_id of the
// active span, if any, and stores it on the returned context.
func Enrich(ctx context.Context, base observability.Logger, fields ...observability.Field) (context.Context, observability.Logger) {
	if base == nil {
		base = FromOr(ctx, nil)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	logger := base.With(fields...)
	return With(ctx, logger), logger
}
