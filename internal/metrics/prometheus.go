// Package metrics provides Prometheus-based metrics for intake analyses.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder records analysis and session metrics. A nil recorder
// discards everything.
type PrometheusRecorder struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	promptTokens     *prometheus.HistogramVec
	transitionsTotal *prometheus.CounterVec
	activeSessions   prometheus.Gauge
}

// NewPrometheusRecorder registers the metrics on reg
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_analysis_requests_total",
				Help: "Total number of analysis requests by provider, model and status",
			},
			[]string{"provider", "model", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intake_analysis_duration_seconds",
				Help:    "Duration of analysis requests in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"provider", "model"},
		),
		promptTokens: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intake_analysis_prompt_tokens",
				Help:    "Estimated prompt size in tokens",
				Buckets: prometheus.ExponentialBuckets(128, 2, 8),
			},
			[]string{"provider", "model"},
		),
		transitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_view_transitions_total",
				Help: "Total number of view state transitions",
			},
			[]string{"from", "to"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "intake_active_sessions",
				Help: "Number of web sessions currently held in memory",
			},
		),
	}
}

// ObserveRequest records a completed analysis request
func (p *PrometheusRecorder) ObserveRequest(provider, model string, success bool, duration time.Duration) {
	if p == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	p.requestsTotal.WithLabelValues(provider, model, status).Inc()
	p.requestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// ObservePromptTokens records the size of a prompt
func (p *PrometheusRecorder) ObservePromptTokens(provider, model string, tokens int) {
	if p == nil {
		return
	}
	p.promptTokens.WithLabelValues(provider, model).Observe(float64(tokens))
}

// ObserveTransition counts a view state change
func (p *PrometheusRecorder) ObserveTransition(from, to string) {
	if p == nil {
		return
	}
	p.transitionsTotal.WithLabelValues(from, to).Inc()
}

// SessionOpened increments the active session gauge
func (p *PrometheusRecorder) SessionOpened() {
	if p == nil {
		return
	}
	p.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge
func (p *PrometheusRecorder) SessionClosed() {
	if p == nil {
		return
	}
	p.activeSessions.Dec()
}
