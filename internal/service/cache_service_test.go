package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fullsco/scholarship-api/internal/models"
)

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, nil, time.Minute, nil, false)
	ctx := context.Background()

	svc.Set(ctx, "search:x", 1, 0)
	var out int
	assert.False(t, svc.Get(ctx, "search:x", &out))
	assert.Empty(t, repo.store)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.False(t, nilSvc.Get(ctx, "k", &out))
	nilSvc.InvalidateSearch(ctx)
}

func TestCacheServiceRoundTripRecordsMetrics(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(&stubCacheRepo{}, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out []string
	assert.False(t, svc.Get(ctx, "search:k", &out))
	svc.Set(ctx, "search:k", []string{"a"}, 0)
	assert.True(t, svc.Get(ctx, "search:k", &out))
	assert.Equal(t, []string{"a"}, out)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
}

func TestCacheServiceLogsBackendErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := NewCacheService(&stubCacheRepo{getErr: errors.New("i/o timeout")}, nil, time.Minute, zap.New(core), true)

	var out int
	assert.False(t, svc.Get(context.Background(), "search:k", &out))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "cache get failed", logs.All()[0].Message)
}

func TestSearchCacheKeyIsStable(t *testing.T) {
	a, err := searchCacheKey("page", models.ScholarshipFilter{Page: 1, PageSize: 10, CategoryID: int64Ptr(4)})
	require.NoError(t, err)
	b, err := searchCacheKey("page", models.ScholarshipFilter{Page: 1, PageSize: 10, CategoryID: int64Ptr(4)})
	require.NoError(t, err)
	c, err := searchCacheKey("page", models.ScholarshipFilter{Page: 2, PageSize: 10, CategoryID: int64Ptr(4)})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "search:page:"))
}
