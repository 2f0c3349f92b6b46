package zaplogger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
)

func TestWrapCarriesFixedAndScopedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Wrap(zap.New(core), observability.F("component", "http_server"))

	log.With(observability.F("request_id", "r-9")).Info("use_case_done",
		observability.F("use_case", "order.place"),
		observability.F("total", decimal.RequireFromString("29.98")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "use_case_done", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "http_server", fields["component"])
	assert.Equal(t, "r-9", fields["request_id"])
	assert.Equal(t, "order.place", fields["use_case"])
}

func TestErrorValuesAreNamedErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	Wrap(zap.New(core)).Warn("publish_failed", observability.F("error", errors.New("bus full")))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "bus full", logs.All()[0].ContextMap()["error"])
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}
