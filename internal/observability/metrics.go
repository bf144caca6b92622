// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "research_assistant"

// Metrics holds the Prometheus collectors for the pipeline. All methods are
// safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// PapersAnalyzed counts papers analyzed and persisted by search runs.
	PapersAnalyzed prometheus.Counter

	// PapersFailed counts papers dropped from search runs.
	PapersFailed prometheus.Counter

	// SourceErrors counts search requests aborted by the paper source.
	SourceErrors prometheus.Counter

	// ModelCalls counts model backend calls by operation and outcome.
	ModelCalls *prometheus.CounterVec

	// ModelCallDuration observes model call latency by operation.
	ModelCallDuration *prometheus.HistogramVec

	// MemoHits counts prompts served from the memo instead of the backend.
	MemoHits prometheus.Counter
}

// NewMetrics registers the collectors on a fresh private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PapersAnalyzed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_analyzed_total",
			Help:      "Papers analyzed and stored by search runs.",
		}),
		PapersFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_failed_total",
			Help:      "Papers dropped from search runs after an analysis or store failure.",
		}),
		SourceErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Search runs aborted because the paper source was unavailable.",
		}),
		ModelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model backend calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		ModelCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Model backend call latency.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"operation"}),
		MemoHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memo_hits_total",
			Help:      "Prompts answered from the in-process memo.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RegisterRuntime adds Go runtime and process collectors to the registry.
// Long-running processes call it once; the CLI commands skip it.
func (m *Metrics) RegisterRuntime() error {
	if m == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	} {
		if err := m.registry.Register(c); err != nil {
			return fmt.Errorf("registering runtime collector: %w", err)
		}
	}
	return nil
}

// ObserveModelCall records one backend call.
func (m *Metrics) ObserveModelCall(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ModelCalls.WithLabelValues(operation, outcome).Inc()
	m.ModelCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// MemoHit records a prompt served from the memo.
func (m *Metrics) MemoHit() {
	if m == nil {
		return
	}
	m.MemoHits.Inc()
}

// PaperAnalyzed records a paper analyzed and stored.
func (m *Metrics) PaperAnalyzed() {
	if m == nil {
		return
	}
	m.PapersAnalyzed.Inc()
}

// PaperFailed records a paper dropped from a run.
func (m *Metrics) PaperFailed() {
	if m == nil {
		return
	}
	m.PapersFailed.Inc()
}

// SourceError records a run aborted by the source.
func (m *Metrics) SourceError() {
	if m == nil {
		return
	}
	m.SourceErrors.Inc()
}
