// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled HTTP requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faqdesk_http_requests_total",
		Help: "HTTP requests handled, by route and status code.",
	}, []string{"route", "code"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "faqdesk_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// BackendAttempts counts generation attempts against the LLM backend.
	BackendAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faqdesk_backend_attempts_total",
		Help: "Generation attempts sent to the LLM backend, including retries.",
	})

	// BackendFailures counts classified backend failures by kind.
	BackendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faqdesk_backend_failures_total",
		Help: "Classified LLM backend failures by kind.",
	}, []string{"kind"})

	// CorpusEntries tracks the size of the active knowledge base corpus.
	CorpusEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "faqdesk_corpus_entries",
		Help: "Entries in the active knowledge base corpus.",
	})
)
