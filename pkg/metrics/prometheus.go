package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	recommendations  *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	recommendedPrice prometheus.Gauge
	expectedProfit   prometheus.Gauge
	gridCollapses    prometheus.Counter
	candidates       prometheus.Histogram
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		recommendations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelpricer_recommendations_total",
				Help: "Total number of price recommendations produced",
			},
			[]string{"source"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelpricer_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		recommendedPrice: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fuelpricer_recommended_price",
				Help: "Most recently recommended price",
			},
		),
		expectedProfit: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fuelpricer_expected_profit",
				Help: "Expected profit of the most recent recommendation",
			},
		),
		gridCollapses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fuelpricer_grid_collapses_total",
				Help: "Times the candidate grid collapsed due to infeasible constraints",
			},
		),
		candidates: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fuelpricer_candidates_evaluated",
				Help:    "Candidate prices evaluated per recommendation",
				Buckets: []float64{1, 5, 10, 20, 30, 40, 60, 80, 100},
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fuelpricer_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRecommendation records a produced recommendation.
func (r *Recorder) RecordRecommendation(source string, price, profit float64, candidates int, relaxed bool) {
	r.recommendations.WithLabelValues(source).Inc()
	r.recommendedPrice.Set(price)
	r.expectedProfit.Set(profit)
	r.candidates.Observe(float64(candidates))
	if relaxed {
		r.gridCollapses.Inc()
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
