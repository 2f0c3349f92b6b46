// Package observability bundles the concrete tracer, logger and metric instruments
// into the observability.Observability handed to use cases, HTTP middleware and workers.
package observability

import (
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
)

// Options carries the adapters built at startup. Any zero field falls back to a no-op.
type Options struct {
	Tracer     observability.Tracer
	Logger     observability.Logger
	Counters   map[observability.MetricKey]observability.Counter
	Histograms map[observability.MetricKey]observability.Histogram
}

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics observability.Metrics
}

// instruments resolves keys to registered instruments; unknown keys get no-ops so
// a use case never has to nil-check what it was handed.
type instruments struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m instruments) Counter(key observability.MetricKey) observability.Counter {
	if c, ok := m.counters[key]; ok {
		return c
	}
	return observability.NopCounter()
}

func (m instruments) Histogram(key observability.MetricKey) observability.Histogram {
	if h, ok := m.histograms[key]; ok {
		return h
	}
	return observability.NopHistogram()
}

func New(opts Options) observability.Observability {
	p := &provider{
		tracer:  opts.Tracer,
		logger:  opts.Logger,
		metrics: observability.NopMetrics(),
	}
	if p.tracer == nil {
		p.tracer = observability.NopTracer()
	}
	if p.logger == nil {
		p.logger = observability.NopLogger()
	}

	m := instruments{
		counters:   make(map[observability.MetricKey]observability.Counter, len(opts.Counters)),
		histograms: make(map[observability.MetricKey]observability.Histogram, len(opts.Histograms)),
	}
	for k, c := range opts.Counters {
		if c != nil {
			m.counters[k] = c
		}
	}
	for k, h := range opts.Histograms {
		if h != nil {
			m.histograms[k] = h
		}
	}
	if len(m.counters) > 0 || len(m.histograms) > 0 {
		p.metrics = m
	}
	return p
}

func (p *provider) Tracer() observability.Tracer   { return p.tracer }
func (p *provider) Logger() observability.Logger   { return p.logger }
func (p *provider) Metrics() observability.Metrics { return p.metrics }
