package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

const reportCachePrefix = "analytics:report"

type scheduleReader interface {
	Snapshot() (models.ScheduleData, int64)
	Grid() engine.Grid
}

// AnalyticsService serves capacity reports, headline stats and the allocation simulator.
type AnalyticsService struct {
	schedule  scheduleReader
	cache     *CacheService
	metrics   *MetricsService
	opts      engine.AnalysisOptions
	windows   []engine.ScoreWindow
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnalyticsService constructs the service. A nil cache disables report caching.
func NewAnalyticsService(schedule scheduleReader, cache *CacheService, metrics *MetricsService, opts engine.AnalysisOptions, validate *validator.Validate, logger *zap.Logger) *AnalyticsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Grid == (engine.Grid{}) {
		opts.Grid = schedule.Grid()
	}
	opts.Strategy = engine.NormalizeStrategy(opts.Strategy)
	return &AnalyticsService{
		schedule:  schedule,
		cache:     cache,
		metrics:   metrics,
		opts:      opts,
		windows:   engine.DefaultScoreWindows(),
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Report runs the capacity analysis of the current snapshot. Results are
// cached per snapshot version and strategy.
func (s *AnalyticsService) Report(ctx context.Context, q dto.ReportQuery) (*models.OperationalReport, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, validationError(err, "invalid report query")
	}
	opts := s.opts
	if q.Strategy != "" {
		opts.Strategy = engine.NormalizeStrategy(q.Strategy)
	}

	data, version := s.schedule.Snapshot()
	key := VersionedKey(reportCachePrefix, version, opts.Strategy)

	var cached models.OperationalReport
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	report := engine.Analyze(data, opts)
	report.Version = version
	report.GeneratedAt = s.now()
	if err := s.cache.Set(ctx, key, report, 0); err != nil {
		s.logger.Debug("report cache write skipped", zap.String("key", key), zap.Error(err))
	}
	return &report, nil
}

// Stats returns the headline counters.
func (s *AnalyticsService) Stats(ctx context.Context) models.Stats {
	data, _ := s.schedule.Snapshot()
	return engine.ComputeStats(data)
}

// Simulate ranks free placements for a session of the given duration.
func (s *AnalyticsService) Simulate(ctx context.Context, req dto.SimulateRequest) (*dto.SimulateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid simulation request")
	}
	data, _ := s.schedule.Snapshot()
	suggestions := engine.Simulate(data, req.DayGroup, req.Duration, s.opts.Grid, s.windows)
	return &dto.SimulateResponse{DayGroup: req.DayGroup, Duration: req.Duration, Suggestions: suggestions}, nil
}

// OnChange refreshes occupancy gauges and drops every cached report. Keys carry
// the snapshot version, so an entry missed here is never served for a newer one.
func (s *AnalyticsService) OnChange(ev ChangeEvent) {
	occupied := make(map[models.DayGroup]int, 2)
	for _, rec := range engine.Flatten(ev.Data) {
		occupied[rec.DayGroup]++
	}
	s.metrics.ObserveSchedule(occupied, engine.ComputeStats(ev.Data).UniquePatients, ev.Version)

	if !s.cache.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.cache.Invalidate(ctx, reportCachePrefix+":*")
	}()
}
