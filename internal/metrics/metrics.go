package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novelhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "novelhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novelhub_chapter_purchases_total",
			Help: "Chapter purchase attempts by outcome",
		},
		[]string{"result"},
	)

	CoinsSpentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "novelhub_coins_spent_total",
			Help: "Coins debited by chapter purchases",
		},
	)

	DepositsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "novelhub_wallet_deposits_total",
			Help: "Total number of wallet top-ups",
		},
	)

	CoinsDepositedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "novelhub_coins_deposited_total",
			Help: "Coins credited by wallet top-ups",
		},
	)

	EntitlementDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novelhub_entitlement_decisions_total",
			Help: "Chapter access decisions by state",
		},
		[]string{"state"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novelhub_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "novelhub_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	SettingsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novelhub_settings_cache_total",
			Help: "Site settings cache lookups by result",
		},
		[]string{"result"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordPurchase counts a purchase outcome: "charged", "unlocked", "owned",
// "insufficient_funds", "not_found" or "error".
func RecordPurchase(result string, charged int64) {
	PurchasesTotal.WithLabelValues(result).Inc()
	if charged > 0 {
		CoinsSpentTotal.Add(float64(charged))
	}
}

func RecordDeposit(amount int64) {
	DepositsTotal.Inc()
	if amount > 0 {
		CoinsDepositedTotal.Add(float64(amount))
	}
}

func RecordEntitlement(state string) {
	EntitlementDecisionsTotal.WithLabelValues(state).Inc()
}

func RecordEmail(status string) {
	EmailsSentTotal.WithLabelValues(status).Inc()
}

func RecordSettingsCache(result string) {
	SettingsCacheTotal.WithLabelValues(result).Inc()
}
