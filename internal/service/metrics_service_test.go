package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullsco/scholarship-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/scholarships", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/scholarships", http.StatusOK, 40*time.Millisecond)
	m.ObserveDBQuery("scholarship_search", 10*time.Millisecond)
	m.RecordSearch(SearchViewSearch, false, 12)
	m.RecordFilterLookupFailure(models.TaxonomyLevel)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 30, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(1), snap.DBQueryCount)
	assert.Equal(t, uint64(1), snap.SearchesTotal)
	assert.Equal(t, uint64(1), snap.FilterLookupFailures)
	assert.Positive(t, snap.Goroutines)
}

func TestMetricsServiceExposition(t *testing.T) {
	m := NewMetricsService()
	m.RecordFilterLookupFailure(models.TaxonomyCategory)
	m.RecordSearch(SearchViewListing, true, 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `filter_lookup_failures_total{dimension="category"} 1`))
	assert.True(t, strings.Contains(body, `scholarship_searches_total{cache="hit",view="listing"} 1`))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordSearch(SearchViewListing, false, 0)
	m.RecordFilterLookupFailure(models.TaxonomyCountry)
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
