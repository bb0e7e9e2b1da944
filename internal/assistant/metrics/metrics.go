// Package metrics provides observability for the assistant module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the assistant module.
type Metrics struct {
	// Questions answered, split by cache hit vs model call
	Questions *prometheus.CounterVec

	// Confidence score distribution of generated answers
	Confidence prometheus.Histogram

	// End-to-end ask latency including cache and persistence
	AskLatency prometheus.Histogram
}

// New creates a new Metrics instance with all assistant module metrics registered.
func New() *Metrics {
	return &Metrics{
		Questions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hsa_assistant_questions_total",
			Help: "Total questions answered by source",
		}, []string{"source"}), // source: "cache", "model"

		Confidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hsa_assistant_confidence_score",
			Help:    "Distribution of answer confidence scores",
			Buckets: []float64{0.1, 0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),

		AskLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hsa_assistant_ask_duration_seconds",
			Help:    "Duration of question answering including cache lookups",
			Buckets: []float64{0.005, 0.05, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementQuestions records an answered question by source.
func (m *Metrics) IncrementQuestions(source string) {
	if m != nil {
		m.Questions.WithLabelValues(source).Inc()
	}
}

// ObserveConfidence records an answer confidence score.
func (m *Metrics) ObserveConfidence(score float64) {
	if m != nil {
		m.Confidence.Observe(score)
	}
}

// ObserveAskLatency records the total ask duration.
func (m *Metrics) ObserveAskLatency(d time.Duration) {
	if m != nil {
		m.AskLatency.Observe(d.Seconds())
	}
}
