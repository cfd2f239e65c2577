package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

type dataFixture struct {
	store    *memorySnapshotStore
	schedule *ScheduleService
	autosave *AutosaveService
	data     *DataService
}

func newDataFixture(t *testing.T, store *memorySnapshotStore) *dataFixture {
	t.Helper()
	persistence := newPersistenceForTest(store)
	schedule := NewScheduleService(engine.DefaultRules(), nil, nil)
	autosave := NewAutosaveService(persistence, AutosaveConfig{RetryDelay: time.Millisecond}, nil)
	autosave.Start(context.Background())
	t.Cleanup(func() { _ = autosave.Stop(context.Background()) })
	schedule.Subscribe(autosave.Notify)

	data := NewDataService(schedule, persistence, autosave, nil)
	data.now = func() time.Time { return fixedNow }
	return &dataFixture{store: store, schedule: schedule, autosave: autosave, data: data}
}

func TestDataServiceBootstrapFromMaster(t *testing.T) {
	store := newMemorySnapshotStore()
	store.slots[SlotMaster] = mustJSON(scheduleWith(seated("01", 1, "a", "ANA", "05:30")))
	fx := newDataFixture(t, store)

	resp, err := fx.data.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceMaster, resp.Source)
	assert.Equal(t, 1, resp.RecordCount)

	st := fx.data.Status(context.Background())
	assert.Equal(t, models.SourceMaster, st.Source)
	assert.Equal(t, models.SaveSaved, st.Status)
	assert.Equal(t, resp.Version, st.SavedVersion)
}

func TestDataServiceRestore(t *testing.T) {
	fx := newDataFixture(t, newMemorySnapshotStore())

	_, err := fx.data.Restore(context.Background(), []byte(`{"foo": 1}`))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidBackup.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)

	_, err = fx.data.Restore(context.Background(), []byte(`not json`))
	assert.Equal(t, appErrors.ErrInvalidBackup.Code, appErrors.FromError(err).Code)

	backup := mustJSON(scheduleWith(seated("07", 2, "g", "GIL", "10:30")))
	resp, err := fx.data.Restore(context.Background(), []byte(backup))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RecordCount)

	require.NoError(t, fx.autosave.Flush(context.Background()))
	raw, ok := fx.store.slot(SlotMaster)
	require.True(t, ok)
	saved, err := engine.DecodeSnapshot([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, engine.CountRecords(saved))
}

func TestDataServiceWipeRequiresConfirmation(t *testing.T) {
	store := newMemorySnapshotStore()
	store.slots[SlotMaster] = mustJSON(scheduleWith(seated("01", 1, "a", "ANA", "05:30")))
	fx := newDataFixture(t, store)
	_, err := fx.data.Bootstrap(context.Background())
	require.NoError(t, err)

	_, err = fx.data.Wipe(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, http.StatusPreconditionRequired, appErrors.FromError(err).Status)
	assert.Len(t, fx.schedule.Records(context.Background()), 1)

	_, err = fx.data.Wipe(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, fx.schedule.Records(context.Background()))

	raw, _ := store.slot(SlotMaster)
	wiped, err := engine.DecodeSnapshot([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 0, engine.CountRecords(wiped))
	_, ok := store.slot(SlotShadow)
	assert.False(t, ok)
}

func TestDataServiceReloadDiscardsUnsavedState(t *testing.T) {
	store := newMemorySnapshotStore()
	store.slots[SlotMaster] = mustJSON(scheduleWith(seated("01", 1, "a", "ANA", "05:30")))
	fx := newDataFixture(t, store)
	_, err := fx.data.Bootstrap(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), SlotMaster, mustJSON(scheduleWith(
		seated("01", 1, "a", "ANA", "05:30"),
		seated("02", 1, "b", "BIA", "05:30"),
	))))

	resp, err := fx.data.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.RecordCount)
	assert.Len(t, fx.schedule.Records(context.Background()), 2)
}

func TestDataServiceDownload(t *testing.T) {
	fx := newDataFixture(t, newMemorySnapshotStore())
	fx.schedule.Reset(scheduleWith(seated("01", 1, "a", "ANA", "05:30")), models.SourceMaster)

	name, body, err := fx.data.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HEMO_BACKUP_2026-10-15_14-30-05.json", name)
	assert.True(t, strings.Contains(string(body), "SEG/QUA/SEX"))

	var decoded models.ScheduleData
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, 1, engine.CountRecords(decoded))
}
