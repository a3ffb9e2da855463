package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_predictions_total",
			Help: "Total number of scored applications by outcome",
		},
		[]string{"outcome"},
	)

	PredictionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_prediction_rejections_total",
			Help: "Total number of applications rejected before scoring",
		},
		[]string{"reason"},
	)

	RiskLevels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_risk_level_total",
			Help: "Total number of decisions per risk level",
		},
		[]string{"level"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loan_prediction_duration_seconds",
			Help:    "Duration of feature building and scoring in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_active_sessions",
			Help: "Number of live scoring sessions",
		},
	)

	NotificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_notifications_failed_total",
			Help: "Total number of decision e-mails that could not be sent",
		},
	)
)

// Outcome returns the label value used for an approval decision
func Outcome(approved bool) string {
	if approved {
		return "approved"
	}
	return "denied"
}
