// Package prometrics backs the observability Counter and Histogram ports with
// prometheus vectors.
package prometrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
)

// Registry exposes the subset of Prometheus registry functionality needed by the application.
type Registry interface {
	Counter(name string, help string, labelKeys ...string) observability.Counter
	Histogram(name string, help string, buckets []float64, labelKeys ...string) observability.Histogram
}

type registry struct {
	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
	reg        prometheus.Registerer
	namespace  string
	subsystem  string
}

// New builds a registry that registers its vectors with reg. A nil reg means the
// process-wide default registerer, which is what promhttp.Handler serves.
func New(reg prometheus.Registerer, namespace, subsystem string) Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &registry{
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
		reg:        reg,
		namespace:  namespace,
		subsystem:  subsystem,
	}
}

// Instruments registers every MetricSpec and returns the instruments keyed for the observability provider.
func Instruments(r Registry, counters, histograms []observability.MetricSpec) (
	map[observability.MetricKey]observability.Counter,
	map[observability.MetricKey]observability.Histogram,
) {
	cs := make(map[observability.MetricKey]observability.Counter, len(counters))
	for _, spec := range counters {
		cs[spec.Key] = r.Counter(string(spec.Key), spec.Help, spec.LabelKeys...)
	}
	hs := make(map[observability.MetricKey]observability.Histogram, len(histograms))
	for _, spec := range histograms {
		buckets := spec.Buckets
		if buckets == nil {
			buckets = prometheus.DefBuckets
		}
		hs[spec.Key] = r.Histogram(string(spec.Key), spec.Help, buckets, spec.LabelKeys...)
	}
	return cs, hs
}

func (r *registry) Counter(name string, help string, labelKeys ...string) observability.Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: name, Help: help,
	}, labelKeys)
	c := &counter{v: register(r.reg, cv), keys: labelKeys}
	r.counters[name] = c
	return c
}

func (r *registry) Histogram(name string, help string, buckets []float64, labelKeys ...string) observability.Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: name, Help: help, Buckets: buckets,
	}, labelKeys)
	h := &histogram{v: register(r.reg, hv), keys: labelKeys}
	r.histograms[name] = h
	return h
}

// register reuses a vector another registry already put on reg, so two registries
// over the default registerer do not panic.
func register[V prometheus.Collector](reg prometheus.Registerer, v V) V {
	if err := reg.Register(v); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(V); ok {
				return existing
			}
		}
		panic(err)
	}
	return v
}

// labelValues orders labels by the declared keys. Undeclared keys are dropped and
// missing ones are empty, so a mislabelled call never panics inside prometheus.
func labelValues(keys []string, ls []observability.Label) []string {
	values := make([]string, len(keys))
	for _, l := range ls {
		for i, k := range keys {
			if k == l.Key {
				values[i] = l.Value
				break
			}
		}
	}
	return values
}

type counter struct {
	v    *prometheus.CounterVec
	keys []string
}

func (c *counter) Add(d float64, labels ...observability.Label) {
	c.v.WithLabelValues(labelValues(c.keys, labels)...).Add(d)
}

func (c *counter) Bind(labels ...observability.Label) observability.BoundCounter {
	return c.v.WithLabelValues(labelValues(c.keys, labels)...)
}

type histogram struct {
	v    *prometheus.HistogramVec
	keys []string
}

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	h.v.WithLabelValues(labelValues(h.keys, labels)...).Observe(v)
}

func (h *histogram) Bind(labels ...observability.Label) observability.BoundHistogram {
	return h.v.WithLabelValues(labelValues(h.keys, labels)...)
}
