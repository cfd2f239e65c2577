package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
	"github.com/noah-isme/hemo-scheduler-api/pkg/jobs"
)

type recordingWriter struct {
	mu       sync.Mutex
	saves    []int64
	wipes    []int64
	allow    []bool
	failWith error
}

func (w *recordingWriter) Save(ctx context.Context, data models.ScheduleData, version int64, allowEmpty bool) (*SaveResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saves = append(w.saves, version)
	w.allow = append(w.allow, allowEmpty)
	if w.failWith != nil {
		return nil, w.failWith
	}
	return &SaveResult{RecordCount: engine.CountRecords(data), SavedAt: fixedNow, Version: version}, nil
}

func (w *recordingWriter) Wipe(ctx context.Context, version int64) (*SaveResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wipes = append(w.wipes, version)
	return &SaveResult{SavedAt: fixedNow, Version: version}, nil
}

func (w *recordingWriter) calls() ([]int64, []int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]int64(nil), w.saves...), append([]int64(nil), w.wipes...)
}

func startAutosave(t *testing.T, writer *recordingWriter, cfg AutosaveConfig) *AutosaveService {
	t.Helper()
	a := NewAutosaveService(writer, cfg, nil)
	a.Start(context.Background())
	t.Cleanup(func() { _ = a.Stop(context.Background()) })
	return a
}

func populated() models.ScheduleData {
	return scheduleWith(seated("01", 1, "a", "ANA", "05:30"))
}

func TestAutosaveSavesAndRunsHooks(t *testing.T) {
	writer := &recordingWriter{}
	a := startAutosave(t, writer, AutosaveConfig{RetryDelay: time.Millisecond})

	var hooked []int64
	a.OnSaved(func(ctx context.Context, data models.ScheduleData, result SaveResult) {
		hooked = append(hooked, result.Version)
	})

	a.Notify(ChangeEvent{Data: populated(), Version: 1})
	require.NoError(t, a.Flush(context.Background()))

	saves, _ := writer.calls()
	assert.Equal(t, []int64{1}, saves)
	assert.Equal(t, []int64{1}, hooked)

	st := a.Status()
	assert.Equal(t, models.SaveSaved, st.Status)
	assert.Equal(t, int64(1), st.SavedVersion)
	assert.Equal(t, 1, st.RecordCount)
	require.NotNil(t, st.LastSavedAt)
	assert.True(t, st.LastSavedAt.Equal(fixedNow))
}

func TestAutosaveStopFlushesAfterStartContextCancelled(t *testing.T) {
	writer := &recordingWriter{}
	a := NewAutosaveService(writer, AutosaveConfig{Debounce: time.Minute, RetryDelay: time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)
	a.Notify(ChangeEvent{Data: populated(), Version: 3})
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, a.Stop(stopCtx))

	saves, _ := writer.calls()
	assert.Equal(t, []int64{3}, saves)
	assert.Equal(t, models.SaveSaved, a.Status().Status)
}

func TestAutosaveDebounceKeepsNewestSnapshot(t *testing.T) {
	writer := &recordingWriter{}
	a := startAutosave(t, writer, AutosaveConfig{Debounce: time.Minute, RetryDelay: time.Millisecond})

	for v := int64(1); v <= 3; v++ {
		a.Notify(ChangeEvent{Data: populated(), Version: v})
	}
	assert.Equal(t, models.SaveSaving, a.Status().Status)

	require.NoError(t, a.Flush(context.Background()))
	saves, _ := writer.calls()
	assert.Equal(t, []int64{3}, saves)
}

func TestAutosaveProtectedIsNotRetried(t *testing.T) {
	writer := &recordingWriter{failWith: appErrors.Clone(appErrors.ErrDataProtected, "")}
	a := startAutosave(t, writer, AutosaveConfig{Retries: 3, RetryDelay: time.Millisecond})

	a.Notify(ChangeEvent{Data: engine.NewEmptySchedule(), Version: 1})
	require.NoError(t, a.Flush(context.Background()))

	saves, _ := writer.calls()
	assert.Len(t, saves, 1)
	assert.Equal(t, models.SaveProtected, a.Status().Status)
}

func TestAutosaveGivesUpAfterRetries(t *testing.T) {
	writer := &recordingWriter{failWith: errors.New("database is locked")}
	a := startAutosave(t, writer, AutosaveConfig{Retries: 1, RetryDelay: time.Millisecond})

	a.Notify(ChangeEvent{Data: populated(), Version: 1})
	require.NoError(t, a.Flush(context.Background()))

	saves, _ := writer.calls()
	assert.Len(t, saves, 2)
	st := a.Status()
	assert.Equal(t, models.SaveError, st.Status)
	assert.Contains(t, st.LastError, "database is locked")
}

func TestAutosaveWipeAndAllowEmptyCarryOver(t *testing.T) {
	writer := &recordingWriter{}
	a := startAutosave(t, writer, AutosaveConfig{Debounce: time.Minute, RetryDelay: time.Millisecond})

	var hooked int
	a.OnSaved(func(context.Context, models.ScheduleData, SaveResult) { hooked++ })

	a.Notify(ChangeEvent{Data: engine.NewEmptySchedule(), Version: 4, AllowEmpty: true, Wipe: true})
	require.NoError(t, a.Flush(context.Background()))

	saves, wipes := writer.calls()
	assert.Empty(t, saves)
	assert.Equal(t, []int64{4}, wipes)
	assert.Zero(t, hooked)
}

func TestAutosavePersistedEventSkipsOlderJobs(t *testing.T) {
	writer := &recordingWriter{}
	a := startAutosave(t, writer, AutosaveConfig{Debounce: time.Minute, RetryDelay: time.Millisecond})

	a.Notify(ChangeEvent{Data: populated(), Version: 1})
	a.Notify(ChangeEvent{Data: populated(), Version: 5, Persisted: true})
	require.NoError(t, a.Flush(context.Background()))

	saves, _ := writer.calls()
	assert.Empty(t, saves)
	st := a.Status()
	assert.Equal(t, models.SaveSaved, st.Status)
	assert.Equal(t, int64(5), st.SavedVersion)

	require.NoError(t, a.handle(context.Background(), jobs.Job{Payload: ChangeEvent{Data: populated(), Version: 4}}))
	saves, _ = writer.calls()
	assert.Empty(t, saves)
}

func TestAutosaveDiscardDropsPending(t *testing.T) {
	writer := &recordingWriter{}
	a := startAutosave(t, writer, AutosaveConfig{Debounce: time.Minute, RetryDelay: time.Millisecond})

	a.Notify(ChangeEvent{Data: populated(), Version: 1})
	require.NoError(t, a.Discard(context.Background()))
	require.NoError(t, a.Flush(context.Background()))

	saves, _ := writer.calls()
	assert.Empty(t, saves)
}
