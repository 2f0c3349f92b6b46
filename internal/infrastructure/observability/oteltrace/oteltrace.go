// Package oteltrace adapts an OpenTelemetry tracer to the observability.Tracer port.
package oteltrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
)

const defaultName = "bookshop"

type Option func(*tracer)

// WithTracerProvider replaces the global provider, mostly for tests.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *tracer) {
		if tp != nil {
			t.provider = tp
		}
	}
}

// WithSpanKind sets the kind for every span this tracer starts. Default is internal.
func WithSpanKind(kind trace.SpanKind) Option {
	return func(t *tracer) { t.kind = kind }
}

type tracer struct {
	provider trace.TracerProvider
	kind     trace.SpanKind
	t        trace.Tracer
}

// New returns a tracer backed by the global otel TracerProvider. Until a provider
// with an exporter is installed via otel.SetTracerProvider, spans are no-ops that
// still carry propagated context.
func New(name string, opts ...Option) observability.Tracer {
	if name == "" {
		name = defaultName
	}
	t := &tracer{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(t)
	}
	if t.provider == nil {
		t.provider = otel.GetTracerProvider()
	}
	t.t = t.provider.Tracer(name)
	return t
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...), trace.WithSpanKind(t.kind))
}
