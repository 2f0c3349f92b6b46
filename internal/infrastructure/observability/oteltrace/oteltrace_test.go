package oteltrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordingProvider struct {
	embedded.TracerProvider
	names []string
}

func (p *recordingProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	p.names = append(p.names, name)
	return noop.NewTracerProvider().Tracer(name, opts...)
}

func TestNewUsesInjectedProvider(t *testing.T) {
	tp := &recordingProvider{}

	New("", WithTracerProvider(tp), WithSpanKind(trace.SpanKindServer))

	assert.Equal(t, []string{"bookshop"}, tp.names)
}

func TestStartKeepsParentSpanContext(t *testing.T) {
	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), parent)

	tr := New("orders", WithTracerProvider(noop.NewTracerProvider()))
	ctx, span := tr.Start(ctx, "UC.PlaceOrder", attribute.Int64("listing.id", 1))
	defer span.End()

	assert.Equal(t, parent.TraceID(), trace.SpanContextFromContext(ctx).TraceID())
}
