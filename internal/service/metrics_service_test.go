package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceRecords(t *testing.T) {
	m := NewMetricsService()
	m.RecordBatchSubmission(3)
	m.IncPeriodTransition("activate")
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/periods", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.reviewsSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchesSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.periodTransitions.WithLabelValues("activate")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "peer_reviews_submitted_total 3")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordBatchSubmission(1)
	m.IncPeriodTransition("activate")
	m.ObserveAggregation(time.Second)
	m.RecordCacheOperation(true, time.Millisecond)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
