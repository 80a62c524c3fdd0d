package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheus_Counters(t *testing.T) {
	p := NewPrometheus()

	p.ObserveSettlement("transfer", "completed", 20*time.Millisecond)
	p.ObserveSettlement("transfer", "completed", 30*time.Millisecond)
	p.ObserveSettlement("deposit", "failed", time.Millisecond)
	p.ObserveGateway("notification", "failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.outcomes.WithLabelValues("transfer", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.outcomes.WithLabelValues("deposit", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.gateways.WithLabelValues("notification", "failed")))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.ObserveGateway("authorization", "authorized")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gateway_calls_total{gateway="authorization",result="authorized"} 1`)
}
