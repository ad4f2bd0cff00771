// Package observability holds the Prometheus metrics of the chat pipeline.
// Every method is safe on a nil *Metrics so components can run without them.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "assistant"

const chatSubsystem = "chat"

// Outcome labels for RequestsTotal.
const (
	OutcomeAnswered     = "answered"
	OutcomeRejected     = "rejected"
	OutcomeShortCircuit = "short_circuit"
	OutcomeError        = "error"
	OutcomeTimeout      = "timeout"
	OutcomeCanceled     = "canceled"
)

type Metrics struct {
	// RequestsTotal counts chat requests by terminal outcome.
	RequestsTotal *prometheus.CounterVec

	// ChunksTotal counts chunk events relayed to clients.
	ChunksTotal prometheus.Counter

	// TokensTotal counts model tokens by direction (input, output) and model.
	TokensTotal *prometheus.CounterVec

	TimeToFirstChunkSeconds prometheus.Histogram
	StreamDurationSeconds   *prometheus.HistogramVec

	ActiveStreams prometheus.Gauge

	// RetrievalFailuresTotal counts retrieval errors absorbed by the pipeline.
	RetrievalFailuresTotal prometheus.Counter

	// RetrievalBestScore observes the best fragment score per request.
	RetrievalBestScore prometheus.Histogram

	KeepAlivesTotal        prometheus.Counter
	ClientDisconnectsTotal prometheus.Counter
}

// NewMetrics creates and registers the metrics on reg. Passing
// prometheus.DefaultRegisterer exposes them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "requests_total",
				Help:      "Total chat requests by outcome",
			},
			[]string{"outcome"},
		),
		ChunksTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: chatSubsystem,
			Name:      "chunks_total",
			Help:      "Total chunk events sent to clients",
		}),
		TokensTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "tokens_total",
				Help:      "Total model tokens by direction and model",
			},
			[]string{"direction", "model"},
		),
		TimeToFirstChunkSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: chatSubsystem,
			Name:      "time_to_first_chunk_seconds",
			Help:      "Time from request start to the first chunk",
			Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}),
		StreamDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "stream_duration_seconds",
				Help:      "Total stream duration by outcome",
				Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		ActiveStreams: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: chatSubsystem,
			Name:      "active_streams",
			Help:      "Number of chat streams in progress",
		}),
		RetrievalFailuresTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: chatSubsystem,
			Name:      "retrieval_failures_total",
			Help:      "Retrieval errors absorbed by degrading to no fragments",
		}),
		RetrievalBestScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: chatSubsystem,
			Name:      "retrieval_best_score",
			Help:      "Best fragment relevance score per request",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		KeepAlivesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: chatSubsystem,
			Name:      "keepalives_total",
			Help:      "Keep-alive comments written to SSE streams",
		}),
		ClientDisconnectsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: chatSubsystem,
			Name:      "client_disconnects_total",
			Help:      "Streams whose client went away before done",
		}),
	}
}

func (m *Metrics) StreamStarted() {
	if m == nil {
		return
	}
	m.ActiveStreams.Inc()
}

// StreamFinished records the terminal outcome of one request.
func (m *Metrics) StreamFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ActiveStreams.Dec()
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.StreamDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) FirstChunk(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TimeToFirstChunkSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) Chunk() {
	if m == nil {
		return
	}
	m.ChunksTotal.Inc()
}

func (m *Metrics) RetrievalFailed() {
	if m == nil {
		return
	}
	m.RetrievalFailuresTotal.Inc()
}

func (m *Metrics) RetrievalScore(best float64) {
	if m == nil {
		return
	}
	m.RetrievalBestScore.Observe(best)
}

// ObserveTokens records model token usage.
func (m *Metrics) ObserveTokens(model string, prompt, completion int) {
	if m == nil {
		return
	}
	m.TokensTotal.WithLabelValues("input", model).Add(float64(prompt))
	m.TokensTotal.WithLabelValues("output", model).Add(float64(completion))
}

func (m *Metrics) KeepAlive() {
	if m == nil {
		return
	}
	m.KeepAlivesTotal.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.ClientDisconnectsTotal.Inc()
}
