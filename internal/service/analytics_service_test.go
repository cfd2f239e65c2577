package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

func newAnalyticsForTest(cacheEnabled bool) (*AnalyticsService, *ScheduleService, *MetricsService) {
	schedule := NewScheduleService(engine.DefaultRules(), nil, nil)
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCacheRepo(), metrics, time.Minute, nil, cacheEnabled)
	svc := NewAnalyticsService(schedule, cache, metrics, engine.DefaultAnalysisOptions(), nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, schedule, metrics
}

func TestAnalyticsReportUsesVersionedCache(t *testing.T) {
	svc, schedule, metrics := newAnalyticsForTest(true)
	schedule.Reset(scheduleWith(seated("01", 1, "a", "ANA", "07:00")), models.SourceMaster)

	first, err := svc.Report(context.Background(), dto.ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, 120, first.Capacity.InstalledCapacity)
	assert.Equal(t, 1, first.Capacity.RealCapacity)
	assert.Equal(t, engine.StrategyLateStart, first.Strategy)
	require.Len(t, first.Candidates, 1)
	assert.Equal(t, models.CandidateLateStart, first.Candidates[0].Kind)

	second, err := svc.Report(context.Background(), dto.ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, first.Capacity, second.Capacity)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)

	schedule.Reset(engine.NewEmptySchedule(), models.SourceEmpty)
	third, err := svc.Report(context.Background(), dto.ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), third.Version)
	assert.Equal(t, 0, third.Capacity.RealCapacity)
}

type unwritableCacheRepo struct {
	*memoryCacheRepo
}

func (unwritableCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis: connection refused")
}

func TestAnalyticsReportSurvivesCacheWriteFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	schedule := NewScheduleService(engine.DefaultRules(), nil, nil)
	metrics := NewMetricsService()
	cache := NewCacheService(unwritableCacheRepo{newMemoryCacheRepo()}, metrics, time.Minute, nil, true)
	svc := NewAnalyticsService(schedule, cache, metrics, engine.DefaultAnalysisOptions(), nil, zap.New(core))
	schedule.Reset(scheduleWith(seated("01", 1, "a", "ANA", "05:30")), models.SourceMaster)

	report, err := svc.Report(context.Background(), dto.ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Capacity.RealCapacity)

	skipped := logs.FilterMessage("report cache write skipped").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, zapcore.DebugLevel, skipped[0].Level)
	assert.Contains(t, skipped[0].ContextMap()["key"], "analytics:report:v1")
}

func TestAnalyticsReportStrategyOverride(t *testing.T) {
	svc, _, _ := newAnalyticsForTest(false)

	report, err := svc.Report(context.Background(), dto.ReportQuery{Strategy: "anticipation"})
	require.NoError(t, err)
	assert.Equal(t, engine.StrategyAnticipation, report.Strategy)

	_, err = svc.Report(context.Background(), dto.ReportQuery{Strategy: "random"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAnalyticsSimulateOnEmptyDay(t *testing.T) {
	svc, _, _ := newAnalyticsForTest(false)

	resp, err := svc.Simulate(context.Background(), dto.SimulateRequest{DayGroup: models.DayGroupMonWedFri, Duration: "04:00"})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 20)
	assert.Equal(t, "01", resp.Suggestions[0].ChairNumber)
	assert.Equal(t, "05:30", resp.Suggestions[0].StartTime)
	assert.Equal(t, 100, resp.Suggestions[0].Score)

	_, err = svc.Simulate(context.Background(), dto.SimulateRequest{DayGroup: "SEG", Duration: "04:00"})
	require.Error(t, err)
}

func TestAnalyticsOnChangeUpdatesGauges(t *testing.T) {
	svc, schedule, metrics := newAnalyticsForTest(false)
	schedule.Subscribe(svc.OnChange)

	schedule.Reset(scheduleWith(
		seated("01", 1, "a", "ANA", "05:30"),
		seated("02", 1, "b", "BIA", "05:30"),
	), models.SourceMaster)

	snap := metrics.Snapshot()
	assert.Equal(t, 2, snap.OccupiedSlots)
	assert.Equal(t, 2, snap.UniquePatients)

	stats := svc.Stats(context.Background())
	assert.Equal(t, 2, stats.TotalSlots)
	assert.Equal(t, 2, stats.Turn1Count)
}
