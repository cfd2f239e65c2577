package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
	"github.com/noah-isme/hemo-scheduler-api/pkg/jobs"
)

const (
	jobTypeSave = "snapshot_save"
	jobTypeWipe = "snapshot_wipe"
)

type snapshotWriter interface {
	Save(ctx context.Context, data models.ScheduleData, version int64, allowEmpty bool) (*SaveResult, error)
	Wipe(ctx context.Context, version int64) (*SaveResult, error)
}

// SavedHook runs after a non-empty snapshot has been stored.
type SavedHook func(ctx context.Context, data models.ScheduleData, result SaveResult)

// AutosaveConfig tunes the debounce and retry behaviour.
type AutosaveConfig struct {
	Debounce   time.Duration
	Retries    int
	RetryDelay time.Duration
}

// AutosaveService turns schedule commits into debounced background saves.
// Only the newest pending snapshot is written; older queued versions are skipped.
type AutosaveService struct {
	writer   snapshotWriter
	queue    *jobs.Queue
	debounce time.Duration
	logger   *zap.Logger
	hooks    []SavedHook

	mu      sync.Mutex
	timer   *time.Timer
	pending *ChangeEvent
	floor   int64
	status  models.PersistenceStatus
}

// NewAutosaveService wires a single-worker queue so saves land in commit order.
func NewAutosaveService(writer snapshotWriter, cfg AutosaveConfig, logger *zap.Logger) *AutosaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &AutosaveService{
		writer:   writer,
		debounce: cfg.Debounce,
		logger:   logger,
		status:   models.PersistenceStatus{Status: models.SaveIdle, Source: models.SourceEmpty},
	}
	a.queue = jobs.NewQueue("autosave", a.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 16,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnGiveUp:   a.giveUp,
	})
	return a
}

// Start launches the save worker. The worker outlives cancellation of ctx;
// only Stop ends it, after pending snapshots are written.
func (a *AutosaveService) Start(ctx context.Context) {
	a.queue.Start(context.WithoutCancel(ctx))
}

// Stop writes any pending snapshot and shuts the worker down.
func (a *AutosaveService) Stop(ctx context.Context) error {
	err := a.Flush(ctx)
	a.queue.Stop()
	return err
}

// OnSaved registers a hook for successful non-empty saves.
func (a *AutosaveService) OnSaved(h SavedHook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, h)
}

// SetSource records where the current snapshot was loaded from.
func (a *AutosaveService) SetSource(src models.SourceTag) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Source = src
}

// Status reports the save indicator.
func (a *AutosaveService) Status() models.PersistenceStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.status
	if st.LastSavedAt != nil {
		ts := *st.LastSavedAt
		st.LastSavedAt = &ts
	}
	return st
}

// Notify is the schedule change listener.
func (a *AutosaveService) Notify(ev ChangeEvent) {
	a.mu.Lock()
	if ev.Version >= a.status.Version {
		a.status.Version = ev.Version
		a.status.RecordCount = engine.CountRecords(ev.Data)
	}

	if ev.Persisted {
		a.stopTimerLocked()
		a.pending = nil
		if ev.Version > a.floor {
			a.floor = ev.Version
		}
		a.status.Status = models.SaveSaved
		a.status.SavedVersion = ev.Version
		a.status.LastError = ""
		a.mu.Unlock()
		return
	}

	if a.pending != nil {
		ev.AllowEmpty = ev.AllowEmpty || a.pending.AllowEmpty
		ev.Wipe = ev.Wipe || (a.pending.Wipe && engine.CountRecords(ev.Data) == 0)
	}
	a.pending = &ev
	a.status.Status = models.SaveSaving

	if a.debounce > 0 {
		if a.timer == nil {
			a.timer = time.AfterFunc(a.debounce, a.fire)
		} else {
			a.timer.Reset(a.debounce)
		}
		a.mu.Unlock()
		return
	}
	next := a.takePendingLocked()
	a.mu.Unlock()
	a.enqueue(next)
}

// Flush enqueues the pending snapshot immediately and waits for every queued save.
func (a *AutosaveService) Flush(ctx context.Context) error {
	a.mu.Lock()
	a.stopTimerLocked()
	next := a.takePendingLocked()
	a.mu.Unlock()
	a.enqueue(next)
	return a.queue.Flush(ctx)
}

// Discard drops the pending snapshot and waits for saves already queued.
func (a *AutosaveService) Discard(ctx context.Context) error {
	a.mu.Lock()
	a.stopTimerLocked()
	a.pending = nil
	a.mu.Unlock()
	return a.queue.Flush(ctx)
}

func (a *AutosaveService) fire() {
	a.mu.Lock()
	next := a.takePendingLocked()
	a.mu.Unlock()
	a.enqueue(next)
}

func (a *AutosaveService) takePendingLocked() *ChangeEvent {
	next := a.pending
	a.pending = nil
	return next
}

func (a *AutosaveService) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
	}
}

func (a *AutosaveService) enqueue(ev *ChangeEvent) {
	if ev == nil {
		return
	}
	jobType := jobTypeSave
	if ev.Wipe {
		jobType = jobTypeWipe
	}
	job := jobs.Job{ID: fmt.Sprintf("%s-%d", jobType, ev.Version), Type: jobType, Payload: *ev}
	if err := a.queue.Enqueue(job); err != nil {
		a.logger.Error("autosave enqueue failed", zap.Int64("version", ev.Version), zap.Error(err))
		a.mu.Lock()
		a.status.Status = models.SaveError
		a.status.LastError = err.Error()
		a.mu.Unlock()
	}
}

func (a *AutosaveService) handle(ctx context.Context, job jobs.Job) error {
	ev, ok := job.Payload.(ChangeEvent)
	if !ok {
		return nil
	}

	a.mu.Lock()
	stale := ev.Version < a.floor
	a.mu.Unlock()
	if stale {
		a.logger.Debug("skipping stale snapshot save", zap.Int64("version", ev.Version))
		return nil
	}

	var (
		result *SaveResult
		err    error
	)
	if ev.Wipe {
		result, err = a.writer.Wipe(ctx, ev.Version)
	} else {
		result, err = a.writer.Save(ctx, ev.Data, ev.Version, ev.AllowEmpty)
	}

	if err != nil {
		a.mu.Lock()
		a.status.LastError = err.Error()
		if errors.Is(err, appErrors.ErrDataProtected) {
			a.status.Status = models.SaveProtected
			a.mu.Unlock()
			return nil
		}
		a.mu.Unlock()
		return err
	}

	a.mu.Lock()
	if ev.Version > a.floor {
		a.floor = ev.Version
	}
	if ev.Version > a.status.SavedVersion {
		a.status.SavedVersion = ev.Version
	}
	savedAt := result.SavedAt
	a.status.LastSavedAt = &savedAt
	a.status.LastError = ""
	if a.pending == nil && a.status.SavedVersion >= a.status.Version {
		a.status.Status = models.SaveSaved
	}
	hooks := append([]SavedHook(nil), a.hooks...)
	a.mu.Unlock()

	a.logger.Debug("snapshot saved", zap.Int64("version", ev.Version), zap.Int("records", result.RecordCount))
	if result.RecordCount > 0 {
		for _, h := range hooks {
			h(ctx, ev.Data, *result)
		}
	}
	return nil
}

func (a *AutosaveService) giveUp(job jobs.Job, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Status = models.SaveError
	a.status.LastError = err.Error()
}
