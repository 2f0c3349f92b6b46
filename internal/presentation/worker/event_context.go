package workerpresentation

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability/logctx"
)

// WithEventContext injects an event-scoped logger for a handler run.
// Dynamic fields only: event_id (generated if attrs has none), trace_id/span_id when the
// context carries a valid span, plus caller-provided low-cardinality attrs.
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	attrs map[string]string,
) context.Context {
	if base == nil {
		base = logctx.FromOr(ctx, observability.NopLogger())
	}

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields := []observability.Field{observability.F("event_id", evtID)}

	keys := make([]string, 0, len(attrs))
	for k, v := range attrs {
		if k != "event_id" && v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, observability.F(k, attrs[k]))
	}

	ctx, _ = logctx.Enrich(ctx, base, fields...)
	return ctx
}
