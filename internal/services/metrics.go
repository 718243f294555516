package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the recommendation core.
type Metrics struct {
	recommendationsServed prometheus.Counter
	rankLatency           prometheus.Histogram
	retrainRuns           *prometheus.CounterVec
	interactionsLogged    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		recommendationsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recommender_recommendations_served_total",
			Help: "Total recommendation requests served successfully",
		}),
		rankLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommender_rank_latency_seconds",
			Help:    "Latency of hybrid ranking",
			Buckets: prometheus.DefBuckets,
		}),
		retrainRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recommender_retrain_runs_total",
			Help: "Retrain pipeline runs by outcome",
		}, []string{"status"}),
		interactionsLogged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recommender_interactions_logged_total",
			Help: "Interaction events appended to the log by type",
		}, []string{"type"}),
	}
}

func (m *Metrics) ObserveRankLatency(d time.Duration) {
	m.rankLatency.Observe(d.Seconds())
}

func (m *Metrics) IncRecommendationsServed() {
	m.recommendationsServed.Inc()
}

func (m *Metrics) IncRetrainRuns(status string) {
	m.retrainRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) IncInteractionsLogged(interactionType string) {
	m.interactionsLogged.WithLabelValues(interactionType).Inc()
}
