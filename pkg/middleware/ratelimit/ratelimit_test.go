package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRejectsOverBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := New(Config{RPS: 0.5, Burst: 2})
	defer l.Stop()

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/scholarships", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/scholarships", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		r.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/scholarships", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEvictIdle(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 1, IdleTTL: time.Minute, CleanupInterval: time.Hour})
	defer l.Stop()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	l.Allow("a")
	l.now = func() time.Time { return base.Add(2 * time.Minute) }
	l.Allow("b")

	l.evictIdle()
	assert.Equal(t, 1, l.Len())
}
