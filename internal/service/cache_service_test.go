package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

func TestCacheServiceDisabled(t *testing.T) {
	repo := &memoryCacheRepo{}
	svc := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	hit, err := svc.Get(ctx, "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, repo.store)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}

func TestCacheServiceRecordsMetrics(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(&memoryCacheRepo{}, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var out string
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	hit, err = svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", out)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.0001)
}

func TestCourseCacheKeys(t *testing.T) {
	assert.Equal(t, "eligibility:course:c1:training:report", courseCacheKey("c1", models.ModeTraining, "report"))
	assert.Equal(t, "eligibility:course:c1:*", courseCachePattern("c1"))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.RecordVerdict(models.ModeTraining, "valid")
	metrics.RecordSamples(1, 1)
	metrics.ObserveBatch(time.Second)
	metrics.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	assert.Equal(t, models.SystemMetrics{}, metrics.Snapshot())
	assert.NotNil(t, metrics.Handler())
}

func TestMetricsServiceVerdicts(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordVerdict(models.ModeTraining, "valid")
	metrics.RecordVerdict(models.ModePrediction, string(models.ReasonNoStudents))
	metrics.RecordVerdict(models.ModeTraining, string(models.ReasonNoStudents))
	metrics.ObserveHTTPRequest("GET", "/courses/:id/analysable", 200, 20*time.Millisecond)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.Verdicts["valid"])
	assert.Equal(t, uint64(2), snapshot.Verdicts["no_students"])
	assert.Equal(t, uint64(1), snapshot.RequestsTotal)
	assert.InDelta(t, 20, snapshot.AverageRequestDurationMs, 0.001)
}
