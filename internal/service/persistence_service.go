package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

// Storage slots of the current format.
const (
	SlotMaster   = "HEMO_PRO_STABLE_V1_MASTER"
	SlotMirror   = "HEMO_PRO_STABLE_V1_MIRROR"
	SlotShadow   = "HEMO_PRO_STABLE_V1_SHADOW"
	SlotMetadata = "HEMO_PRO_STABLE_V1_METADATA"

	snapshotFormat = "10.0"
)

// legacySlots are probed in order when neither current copy is readable.
var legacySlots = []string{
	"HEMOSCHEDULER_DB_V9_CLEAN_MASTER",
	"HEMOSCHEDULER_DB_V7_PRODUCTION_MASTER",
	"HEMOSCHEDULER_DB_V6_PRODUCTION_MASTER",
	"HEMOSCHEDULER_DB_V5_PRODUCTION_MASTER",
	"HEMOSCHEDULER_DB_V4_PRODUCTION_MASTER",
	"HEMOSCHEDULER_DB_V3_PRODUCTION_MASTER",
	"HEMOSCHEDULER_DB_V2_MASTER",
	"HEMO_DB_PERMANENT_V1_MASTER_DATA",
}

// SnapshotStore is the key-value table holding serialized snapshots.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (*models.SnapshotRecord, error)
	Put(ctx context.Context, key, payload string) error
	PutAll(ctx context.Context, slots map[string]string, order []string) error
	Delete(ctx context.Context, key string) error
}

// SaveResult describes a completed save.
type SaveResult struct {
	RecordCount int
	SavedAt     time.Time
	Version     int64
}

// PersistenceService loads and saves whole schedule snapshots with
// redundant copies and a guard against accidental emptying.
type PersistenceService struct {
	store   SnapshotStore
	policy  engine.SavePolicy
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewPersistenceService constructs the service.
func NewPersistenceService(store SnapshotStore, metrics *MetricsService, logger *zap.Logger) *PersistenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersistenceService{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the best available snapshot: master, then mirror (repairing
// master), then the first populated legacy slot (migrated forward), else empty.
func (s *PersistenceService) Load(ctx context.Context) (models.ScheduleData, models.SourceTag, error) {
	master, err := s.read(ctx, SlotMaster)
	if err != nil {
		return models.ScheduleData{}, "", err
	}
	if master != nil {
		data, decodeErr := engine.DecodeSnapshot([]byte(master.Payload))
		if decodeErr == nil {
			return data, models.SourceMaster, nil
		}
		s.logger.Warn("master snapshot unreadable", zap.Error(decodeErr))
	}

	mirror, err := s.read(ctx, SlotMirror)
	if err != nil {
		return models.ScheduleData{}, "", err
	}
	if mirror != nil {
		data, decodeErr := engine.DecodeSnapshot([]byte(mirror.Payload))
		if decodeErr == nil {
			if err := s.store.Put(ctx, SlotMaster, mirror.Payload); err != nil {
				s.logger.Warn("failed to repair master from mirror", zap.Error(err))
			} else {
				s.logger.Info("master repaired from mirror")
			}
			return data, models.SourceMirror, nil
		}
		s.logger.Warn("mirror snapshot unreadable", zap.Error(decodeErr))
	}

	for _, key := range legacySlots {
		rec, err := s.read(ctx, key)
		if err != nil {
			return models.ScheduleData{}, "", err
		}
		if rec == nil {
			continue
		}
		data, decodeErr := engine.DecodeSnapshot([]byte(rec.Payload))
		if decodeErr != nil || engine.CountRecords(data) == 0 {
			continue
		}
		payload, err := json.Marshal(data)
		if err != nil {
			return models.ScheduleData{}, "", fmt.Errorf("encode migrated snapshot: %w", err)
		}
		slots := map[string]string{SlotMaster: string(payload), SlotMirror: string(payload)}
		if err := s.store.PutAll(ctx, slots, []string{SlotMaster, SlotMirror}); err != nil {
			s.logger.Warn("failed to write migrated snapshot", zap.String("legacy_slot", key), zap.Error(err))
		}
		s.logger.Info("legacy snapshot migrated", zap.String("legacy_slot", key), zap.Int("records", engine.CountRecords(data)))
		return data, models.SourceLegacyMigration, nil
	}

	return engine.NewEmptySchedule(), models.SourceEmpty, nil
}

// Save writes master, mirror, shadow (non-empty only) and metadata. An empty
// snapshot over a populated store is refused unless allowEmpty is set.
func (s *PersistenceService) Save(ctx context.Context, data models.ScheduleData, version int64, allowEmpty bool) (*SaveResult, error) {
	next := engine.Summarize(data)
	prev, err := s.storedSummary(ctx)
	if err != nil {
		s.metrics.RecordSave(SaveOutcomeError)
		return nil, err
	}
	if err := s.policy.Evaluate(prev, next, allowEmpty); err != nil {
		s.metrics.RecordSave(SaveOutcomeProtected)
		s.logger.Warn("empty save blocked", zap.Int("stored_records", prev.RecordCount), zap.Int64("version", version))
		return nil, translateEngineError(err)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		s.metrics.RecordSave(SaveOutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode snapshot")
	}
	savedAt := s.now()
	meta, err := json.Marshal(models.SnapshotMeta{LastSaved: savedAt, RecordCount: next.RecordCount, Version: version, Format: snapshotFormat})
	if err != nil {
		s.metrics.RecordSave(SaveOutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode snapshot metadata")
	}

	slots := map[string]string{
		SlotMaster:   string(payload),
		SlotMirror:   string(payload),
		SlotMetadata: string(meta),
	}
	order := []string{SlotMaster, SlotMirror}
	if next.RecordCount > 0 {
		slots[SlotShadow] = string(payload)
		order = append(order, SlotShadow)
	}
	order = append(order, SlotMetadata)

	start := time.Now()
	err = s.store.PutAll(ctx, slots, order)
	s.metrics.ObserveDBQuery("snapshot_save", time.Since(start))
	if err != nil {
		s.metrics.RecordSave(SaveOutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save snapshot")
	}
	s.metrics.RecordSave(SaveOutcomeSaved)
	return &SaveResult{RecordCount: next.RecordCount, SavedAt: savedAt, Version: version}, nil
}

// Wipe stores the empty schedule in master and mirror and drops the shadow copy.
func (s *PersistenceService) Wipe(ctx context.Context, version int64) (*SaveResult, error) {
	result, err := s.Save(ctx, engine.NewEmptySchedule(), version, true)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, SlotShadow); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop shadow copy")
	}
	s.logger.Warn("stored snapshots wiped", zap.Int64("version", version))
	return result, nil
}

// Meta returns the metadata of the last save, nil when nothing was saved.
func (s *PersistenceService) Meta(ctx context.Context) (*models.SnapshotMeta, error) {
	rec, err := s.read(ctx, SlotMetadata)
	if err != nil || rec == nil {
		return nil, err
	}
	var meta models.SnapshotMeta
	if err := json.Unmarshal([]byte(rec.Payload), &meta); err != nil {
		s.logger.Warn("snapshot metadata unreadable", zap.Error(err))
		return nil, nil
	}
	return &meta, nil
}

func (s *PersistenceService) storedSummary(ctx context.Context) (engine.SnapshotSummary, error) {
	rec, err := s.read(ctx, SlotMaster)
	if err != nil {
		return engine.SnapshotSummary{}, err
	}
	if rec == nil {
		return engine.SnapshotSummary{}, nil
	}
	data, err := engine.DecodeSnapshot([]byte(rec.Payload))
	if err != nil {
		return engine.SnapshotSummary{Present: true, Corrupt: true}, nil
	}
	return engine.Summarize(data), nil
}

// read returns nil without error for a missing slot.
func (s *PersistenceService) read(ctx context.Context, key string) (*models.SnapshotRecord, error) {
	start := time.Now()
	rec, err := s.store.Get(ctx, key)
	s.metrics.ObserveDBQuery("snapshot_get", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to read %s", key))
	}
	return rec, nil
}
