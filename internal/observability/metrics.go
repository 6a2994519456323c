// Package observability defines the domain Prometheus metrics of the chat
// service. HTTP-level metrics live in the http middleware package.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "legalchat"

// Metrics holds the chat and ingestion collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ChatRequests       *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	DocumentsIngested  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ChatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_requests_total",
				Help:      "Chat requests by terminal conversation state.",
			},
			[]string{"state"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time spent waiting for the external generator.",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		),
		DocumentsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_ingested_total",
				Help:      "Document uploads by result.",
			},
			[]string{"result"},
		),
	}
	for _, c := range []prometheus.Collector{m.ChatRequests, m.GenerationDuration, m.DocumentsIngested} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ChatFinished counts a chat request that ended in state.
func (m *Metrics) ChatFinished(state string) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(state).Inc()
}

// GenerationObserved records one generator round trip.
func (m *Metrics) GenerationObserved(d time.Duration, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.GenerationDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// DocumentIngested counts an upload attempt by result code, e.g. "ok" or "too_large".
func (m *Metrics) DocumentIngested(result string) {
	if m == nil {
		return
	}
	m.DocumentsIngested.WithLabelValues(result).Inc()
}
