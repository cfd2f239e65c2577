package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/handler"
	"github.com/noah-isme/hemo-scheduler-api/internal/repository"
	"github.com/noah-isme/hemo-scheduler-api/internal/service"
	"github.com/noah-isme/hemo-scheduler-api/pkg/cache"
	"github.com/noah-isme/hemo-scheduler-api/pkg/config"
	"github.com/noah-isme/hemo-scheduler-api/pkg/database"
	"github.com/noah-isme/hemo-scheduler-api/pkg/logger"
	"github.com/noah-isme/hemo-scheduler-api/pkg/storage"
)

// app holds the wired services shared by every command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	redis  *redis.Client

	metrics   *service.MetricsService
	schedule  *service.ScheduleService
	autosave  *service.AutosaveService
	backups   *service.BackupService
	analytics *service.AnalyticsService
	imports   *service.ImportService
	exports   *service.ExportService
	data      *service.DataService
	auth      *service.AuthService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
		redisClient = nil
	}

	a := &app{cfg: cfg, logger: logr, db: db, redis: redisClient}
	a.metrics = service.NewMetricsService()

	rules := engine.DefaultRules()
	rules.RejectOverlaps = cfg.Scheduler.RejectOverlaps
	a.schedule = service.NewScheduleService(rules, nil, logr.Named("schedule"))

	persistence := service.NewPersistenceService(repository.NewSnapshotRepository(db), a.metrics, logr.Named("persistence"))
	a.autosave = service.NewAutosaveService(persistence, service.AutosaveConfig{
		Debounce:   cfg.Scheduler.SaveDebounce,
		Retries:    cfg.Scheduler.SaveRetries,
		RetryDelay: cfg.Scheduler.SaveRetryDelay,
	}, logr.Named("autosave"))
	a.schedule.Subscribe(a.autosave.Notify)

	if cfg.Backup.Enabled {
		if err := a.wireBackups(ctx); err != nil {
			a.close()
			return nil, err
		}
	}

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), a.metrics, cfg.Analytics.CacheTTL, logr,
		cfg.Analytics.CacheEnabled && redisClient != nil)
	opts := engine.DefaultAnalysisOptions()
	opts.Grid = rules.Grid
	opts.EffectiveRatio = cfg.Scheduler.EffectiveCapacityRatio
	opts.Strategy = cfg.Scheduler.CandidateStrategy
	if cfg.Scheduler.LateStartThreshold != "" {
		opts.LateStartThreshold = engine.TimeToMinutes(cfg.Scheduler.LateStartThreshold)
	}
	a.analytics = service.NewAnalyticsService(a.schedule, cacheSvc, a.metrics, opts, nil, logr.Named("analytics"))
	a.schedule.Subscribe(a.analytics.OnChange)

	a.imports = service.NewImportService(a.schedule, a.metrics, nil, logr.Named("import"))
	a.exports = service.NewExportService(a.schedule, service.ExportConfig{ClinicName: cfg.Exports.ClinicName}, logr.Named("export"), nil, nil)
	a.data = service.NewDataService(a.schedule, persistence, a.autosave, logr.Named("data"))
	a.auth = service.NewAuthService(nil, logr.Named("auth"), service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	return a, nil
}

func (a *app) wireBackups(ctx context.Context) error {
	var store service.BackupStore
	switch a.cfg.Backup.Driver {
	case config.BackupDriverS3:
		s3Store, err := storage.NewS3Storage(ctx, a.cfg.Backup.S3)
		if err != nil {
			return fmt.Errorf("init s3 backups: %w", err)
		}
		store = s3Store
	default:
		local, err := storage.NewLocalStorage(a.cfg.Backup.LocalDir)
		if err != nil {
			return fmt.Errorf("init local backups: %w", err)
		}
		store = local
	}
	var signer *storage.SignedURLSigner
	if a.cfg.Backup.SignedURLSecret != "" {
		signer = storage.NewSignedURLSigner(a.cfg.Backup.SignedURLSecret, a.cfg.Backup.SignedURLTTL)
	}
	a.backups = service.NewBackupService(store, signer, service.BackupOptions{
		Retention:    a.cfg.Backup.Retention,
		DownloadPath: a.cfg.APIPrefix + handler.BackupDownloadPath,
	}, a.logger.Named("backup"))
	a.autosave.OnSaved(a.backups.AfterSave)
	return nil
}

// start loads the stored snapshot and begins autosaving.
func (a *app) start(ctx context.Context) error {
	a.autosave.Start(ctx)
	if _, err := a.data.Bootstrap(ctx); err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	return nil
}

// stop flushes pending saves.
func (a *app) stop(ctx context.Context) error {
	return a.autosave.Stop(ctx)
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.logger.Sync()
}
