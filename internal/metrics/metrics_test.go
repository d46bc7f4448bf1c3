package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/chapters/:id", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/chapters/:id", "200"))
	assert.Equal(t, float64(1), count)

	metric := HTTPRequestDuration.WithLabelValues("GET", "/chapters/:id").(prometheus.Histogram)
	metric.Observe(0.5)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/auth/login", "401", 0.05)

	successCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "200"))
	failCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "401"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), failCount)
}

func TestRecordPurchase(t *testing.T) {
	PurchasesTotal.Reset()
	before := testutil.ToFloat64(CoinsSpentTotal)

	RecordPurchase("charged", 10)
	RecordPurchase("owned", 0)
	RecordPurchase("insufficient_funds", 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(PurchasesTotal.WithLabelValues("charged")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PurchasesTotal.WithLabelValues("owned")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PurchasesTotal.WithLabelValues("insufficient_funds")))
	assert.Equal(t, before+10, testutil.ToFloat64(CoinsSpentTotal))
}

func TestRecordDeposit(t *testing.T) {
	deposits := testutil.ToFloat64(DepositsTotal)
	coins := testutil.ToFloat64(CoinsDepositedTotal)

	RecordDeposit(250)

	assert.Equal(t, deposits+1, testutil.ToFloat64(DepositsTotal))
	assert.Equal(t, coins+250, testutil.ToFloat64(CoinsDepositedTotal))
}

func TestRecordEntitlement(t *testing.T) {
	EntitlementDecisionsTotal.Reset()

	RecordEntitlement("unlocked")
	RecordEntitlement("login_required")
	RecordEntitlement("unlocked")

	assert.Equal(t, float64(2), testutil.ToFloat64(EntitlementDecisionsTotal.WithLabelValues("unlocked")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EntitlementDecisionsTotal.WithLabelValues("login_required")))
}

func TestRecordEmailAndCache(t *testing.T) {
	EmailsSentTotal.Reset()
	SettingsCacheTotal.Reset()

	RecordEmail("sent")
	RecordSettingsCache("hit")
	RecordSettingsCache("miss")

	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("sent")))
	assert.Equal(t, float64(1), testutil.ToFloat64(SettingsCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(SettingsCacheTotal.WithLabelValues("miss")))
}
