// Package metrics provides Prometheus instrumentation for the indexing and
// search subsystems.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector this module registers. Construct
// one with NewMetrics at startup and thread it into the builder, resolver,
// LLM client, and search engine.
type Metrics struct {
	// BuildsTotal counts completed index builds by terminal stage and
	// document type.
	// Labels: stage (completed|error), doc_type
	BuildsTotal *prometheus.CounterVec

	// BuildDuration measures wall-clock time for a full BuildIndex call.
	// Labels: doc_type
	BuildDuration *prometheus.HistogramVec

	// ChunksIndexed counts chunks written to the index store.
	// Labels: doc_type
	ChunksIndexed *prometheus.CounterVec

	// EmbeddingCalls counts Resolver.Embed calls by backend and outcome.
	// Labels: backend (local|remote), status (success|error)
	EmbeddingCalls *prometheus.CounterVec

	// EmbeddingDuration measures a single Embed call's latency.
	// Labels: backend
	EmbeddingDuration *prometheus.HistogramVec

	// LLMRequestDuration measures one streaming LLM request's total
	// duration, from SendMessage to its terminal state.
	// Labels: provider, model
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestsTotal counts streaming LLM requests by outcome.
	// Labels: provider, model, status (success|error)
	LLMRequestsTotal *prometheus.CounterVec

	// SearchQueries counts Engine.Search calls.
	SearchQueries prometheus.Counter

	// SearchDuration measures one Search call's latency.
	SearchDuration prometheus.Histogram
}

// NewMetrics constructs and registers every collector against the default
// Prometheus registry. Call once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		BuildsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyrag_index_builds_total",
				Help: "Total number of index builds by terminal stage and document type",
			},
			[]string{"stage", "doc_type"},
		),

		BuildDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyrag_index_build_duration_seconds",
				Help:    "Duration of a full index build in seconds",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"doc_type"},
		),

		ChunksIndexed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyrag_chunks_indexed_total",
				Help: "Total number of chunks written to the index store by document type",
			},
			[]string{"doc_type"},
		),

		EmbeddingCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyrag_embedding_calls_total",
				Help: "Total number of embedding calls by backend and outcome",
			},
			[]string{"backend", "status"},
		),

		EmbeddingDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyrag_embedding_call_duration_seconds",
				Help:    "Duration of a single embedding call in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"backend"},
		),

		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyrag_llm_request_duration_seconds",
				Help:    "Duration of a streaming LLM request in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "model"},
		),

		LLMRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyrag_llm_requests_total",
				Help: "Total number of streaming LLM requests by provider, model, and outcome",
			},
			[]string{"provider", "model", "status"},
		),

		SearchQueries: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "studyrag_search_queries_total",
				Help: "Total number of search queries executed",
			},
		),

		SearchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "studyrag_search_duration_seconds",
				Help:    "Duration of a search query in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
		),
	}
}

// RecordBuild records one terminal BuildIndex outcome. stage is the
// progress stage the build ended on (completed or error). A nil Metrics
// receiver is a no-op, so instrumentation stays optional for callers that
// construct collaborators without a registry (tests, mainly).
func (m *Metrics) RecordBuild(docType, stage string, dur time.Duration, chunkCount int) {
	if m == nil {
		return
	}
	m.BuildsTotal.WithLabelValues(stage, docType).Inc()
	m.BuildDuration.WithLabelValues(docType).Observe(dur.Seconds())
	if chunkCount > 0 {
		m.ChunksIndexed.WithLabelValues(docType).Add(float64(chunkCount))
	}
}

// RecordEmbed records one Resolver.Embed call.
func (m *Metrics) RecordEmbed(backend, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.EmbeddingCalls.WithLabelValues(backend, status).Inc()
	m.EmbeddingDuration.WithLabelValues(backend).Observe(dur.Seconds())
}

// RecordLLMRequest records one streaming LLM request's terminal outcome.
func (m *Metrics) RecordLLMRequest(provider, model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(provider, model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider, model).Observe(dur.Seconds())
}

// RecordSearch records one Engine.Search call.
func (m *Metrics) RecordSearch(dur time.Duration) {
	if m == nil {
		return
	}
	m.SearchQueries.Inc()
	m.SearchDuration.Observe(dur.Seconds())
}
