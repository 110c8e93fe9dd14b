// Package metrics provides Prometheus metrics for the relay and its collaborators.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "call_insights"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsTotal    prometheus.Counter
	SessionsActive   prometheus.Gauge
	SessionsFailed   *prometheus.CounterVec
	SessionDuration  prometheus.Histogram
	SegmentsRecorded prometheus.Counter

	// Relay metrics
	AudioFramesForwarded prometheus.Counter
	AudioBytesForwarded  prometheus.Counter
	TranscriptsForwarded *prometheus.CounterVec
	EventsMalformed      prometheus.Counter

	// Persistence metrics
	ConversationsSaved  *prometheus.CounterVec
	ConversationsFailed *prometheus.CounterVec

	// Assistance metrics
	AssistanceLatency   prometheus.Histogram
	AssistanceFallbacks *prometheus.CounterVec
	DocumentsSkipped    *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal  *prometheus.CounterVec
	KafkaPublishErrors *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
// It registers with the default registry, so call it once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_sessions_total",
			Help:      "Total number of streaming sessions accepted",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_sessions_active",
			Help:      "Number of currently open streaming sessions",
		}),
		SessionsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_sessions_failed_total",
			Help:      "Total number of sessions that failed to reach streaming",
		}, []string{"reason"}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_session_duration_seconds",
			Help:      "Duration of streaming sessions in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}),
		SegmentsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_segments_recorded_total",
			Help:      "Total number of finalized transcript segments recorded",
		}),

		AudioFramesForwarded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_audio_frames_forwarded_total",
			Help:      "Total audio frames forwarded to the transcription service",
		}),
		AudioBytesForwarded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_audio_bytes_forwarded_total",
			Help:      "Total raw audio bytes forwarded to the transcription service",
		}),
		TranscriptsForwarded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_transcripts_forwarded_total",
			Help:      "Total transcript messages forwarded to clients",
		}, []string{"kind"}),
		EventsMalformed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_events_malformed_total",
			Help:      "Total remote events skipped because they could not be decoded",
		}),

		ConversationsSaved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_saved_total",
			Help:      "Total conversation records persisted",
		}, []string{"store"}),
		ConversationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_failed_total",
			Help:      "Total conversation records that failed to persist",
		}, []string{"store"}),

		AssistanceLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assistance_latency_seconds",
			Help:      "Time to produce an assistance answer in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		AssistanceFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistance_fallbacks_total",
			Help:      "Total assistance answers replaced by a fallback message",
		}, []string{"reason"}),
		DocumentsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_documents_skipped_total",
			Help:      "Total knowledge documents skipped while building context",
		}, []string{"reason"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic"}),
	}
}

// SessionStarted records a newly accepted session.
func (m *Metrics) SessionStarted() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// SessionEnded records a terminated session and its duration.
func (m *Metrics) SessionEnded(durationSeconds float64) {
	m.SessionsActive.Dec()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordTranscript counts a forwarded transcript message.
func (m *Metrics) RecordTranscript(isFinal bool) {
	kind := "partial"
	if isFinal {
		kind = "final"
	}
	m.TranscriptsForwarded.WithLabelValues(kind).Inc()
}

// RecordConversationSave counts a persistence outcome for store.
func (m *Metrics) RecordConversationSave(store string, err error) {
	if err != nil {
		m.ConversationsFailed.WithLabelValues(store).Inc()
		return
	}
	m.ConversationsSaved.WithLabelValues(store).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic string, err error) {
	m.KafkaPublishTotal.WithLabelValues(topic).Inc()
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic).Inc()
	}
}
