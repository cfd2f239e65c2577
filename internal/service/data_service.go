package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

type snapshotLoader interface {
	Load(ctx context.Context) (models.ScheduleData, models.SourceTag, error)
}

// DataService covers whole-snapshot operations: load, reload, backup file
// download, restore and the confirmed wipe.
type DataService struct {
	schedule *ScheduleService
	loader   snapshotLoader
	autosave *AutosaveService
	logger   *zap.Logger
	now      func() time.Time
}

// NewDataService constructs the service.
func NewDataService(schedule *ScheduleService, loader snapshotLoader, autosave *AutosaveService, logger *zap.Logger) *DataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataService{
		schedule: schedule,
		loader:   loader,
		autosave: autosave,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Bootstrap loads the stored snapshot into the schedule.
func (s *DataService) Bootstrap(ctx context.Context) (*dto.ReloadResponse, error) {
	data, source, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	version := s.schedule.Reset(data, source)
	s.autosave.SetSource(source)
	count := engine.CountRecords(data)
	s.logger.Info("schedule loaded", zap.String("source", string(source)), zap.Int("records", count), zap.Int64("version", version))
	return &dto.ReloadResponse{Source: source, RecordCount: count, Version: version}, nil
}

// Reload discards unsaved changes and reads the store again.
func (s *DataService) Reload(ctx context.Context) (*dto.ReloadResponse, error) {
	if err := s.autosave.Discard(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "pending saves did not settle")
	}
	return s.Bootstrap(ctx)
}

// Status reports the save indicator.
func (s *DataService) Status(ctx context.Context) models.PersistenceStatus {
	return s.autosave.Status()
}

// Download renders the current schedule as a backup file.
func (s *DataService) Download(ctx context.Context) (string, []byte, error) {
	data, _ := s.schedule.Snapshot()
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backup")
	}
	return BackupFilename(s.now()), body, nil
}

// BackupFilename names a downloaded backup after its timestamp.
func BackupFilename(ts time.Time) string {
	return "HEMO_BACKUP_" + ts.Format("2006-01-02_15-04-05") + ".json"
}

// Restore replaces the schedule with a backup file.
func (s *DataService) Restore(ctx context.Context, raw []byte) (*dto.RestoreResponse, error) {
	data, err := engine.DecodeSnapshot(raw)
	if err != nil {
		return nil, translateEngineError(err)
	}
	resp, err := s.schedule.Replace(ctx, data, "restore")
	if err != nil {
		return nil, err
	}
	s.logger.Info("backup restored", zap.Int("records", resp.RecordCount), zap.Int64("version", resp.Version))
	return &dto.RestoreResponse{RecordCount: resp.RecordCount, Version: resp.Version}, nil
}

// Wipe empties the schedule and every stored copy. It requires confirm.
func (s *DataService) Wipe(ctx context.Context, confirm bool) (*dto.MutationResponse, error) {
	if !confirm {
		return nil, appErrors.Clone(appErrors.ErrNotConfirmed, "wipe requires confirm=true")
	}
	resp, err := s.schedule.Wipe(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.autosave.Flush(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "wipe was not persisted in time")
	}
	if st := s.autosave.Status(); st.Status == models.SaveError && st.SavedVersion < resp.Version {
		return nil, appErrors.Clone(appErrors.ErrInternal, "wipe could not be persisted: "+st.LastError)
	}
	return resp, nil
}
