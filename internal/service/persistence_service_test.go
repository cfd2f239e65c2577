package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

func newPersistenceForTest(store *memorySnapshotStore) *PersistenceService {
	svc := NewPersistenceService(store, NewMetricsService(), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestPersistenceLoadEmptyStore(t *testing.T) {
	svc := newPersistenceForTest(newMemorySnapshotStore())

	data, source, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceEmpty, source)
	assert.Len(t, data.MonWedFri, 20)
	assert.Equal(t, 0, engine.CountRecords(data))
}

func TestPersistenceLoadPrefersMaster(t *testing.T) {
	store := newMemorySnapshotStore()
	store.slots[SlotMaster] = mustJSON(scheduleWith(seated("01", 1, "a", "ANA", "05:30")))
	store.slots[SlotMirror] = mustJSON(engine.NewEmptySchedule())
	svc := newPersistenceForTest(store)

	data, source, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceMaster, source)
	assert.Equal(t, 1, engine.CountRecords(data))
}

func TestPersistenceLoadRepairsMasterFromMirror(t *testing.T) {
	store := newMemorySnapshotStore()
	mirror := mustJSON(scheduleWith(seated("02", 2, "b", "BIA", "10:30")))
	store.slots[SlotMaster] = "{not json"
	store.slots[SlotMirror] = mirror
	svc := newPersistenceForTest(store)

	data, source, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceMirror, source)
	assert.Equal(t, 1, engine.CountRecords(data))

	repaired, ok := store.slot(SlotMaster)
	require.True(t, ok)
	assert.Equal(t, mirror, repaired)
}

func TestPersistenceLoadMigratesFirstPopulatedLegacySlot(t *testing.T) {
	store := newMemorySnapshotStore()
	store.slots["HEMOSCHEDULER_DB_V9_CLEAN_MASTER"] = mustJSON(engine.NewEmptySchedule())
	store.slots["HEMOSCHEDULER_DB_V7_PRODUCTION_MASTER"] = mustJSON(scheduleWith(
		seated("03", 1, "c", "CAIO", "05:30"),
		seated("04", 1, "d", "DANI", "05:30"),
	))
	store.slots["HEMO_DB_PERMANENT_V1_MASTER_DATA"] = mustJSON(scheduleWith(seated("05", 1, "e", "EVA", "05:30")))
	svc := newPersistenceForTest(store)

	data, source, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceLegacyMigration, source)
	assert.Equal(t, 2, engine.CountRecords(data))

	for _, key := range []string{SlotMaster, SlotMirror} {
		raw, ok := store.slot(key)
		require.True(t, ok, key)
		migrated, err := engine.DecodeSnapshot([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, 2, engine.CountRecords(migrated))
	}
}

func TestPersistenceSaveWritesEveryCopy(t *testing.T) {
	store := newMemorySnapshotStore()
	svc := newPersistenceForTest(store)

	result, err := svc.Save(context.Background(), scheduleWith(seated("01", 1, "a", "ANA", "05:30")), 3, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordCount)
	assert.Equal(t, fixedNow, result.SavedAt)

	for _, key := range []string{SlotMaster, SlotMirror, SlotShadow, SlotMetadata} {
		_, ok := store.slot(key)
		assert.True(t, ok, key)
	}

	meta, err := svc.Meta(context.Background())
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, 1, meta.RecordCount)
	assert.Equal(t, int64(3), meta.Version)
	assert.Equal(t, "10.0", meta.Format)
	assert.True(t, meta.LastSaved.Equal(fixedNow))
}

func TestPersistenceSaveBlocksAccidentalEmpty(t *testing.T) {
	store := newMemorySnapshotStore()
	populated := mustJSON(scheduleWith(seated("01", 1, "a", "ANA", "05:30")))
	store.slots[SlotMaster] = populated
	svc := newPersistenceForTest(store)

	_, err := svc.Save(context.Background(), engine.NewEmptySchedule(), 2, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDataProtected))

	master, _ := store.slot(SlotMaster)
	assert.Equal(t, populated, master)
	assert.Equal(t, uint64(1), svc.metrics.Snapshot().SavesProtected)
}

func TestPersistenceSaveEmptyWhenAllowed(t *testing.T) {
	store := newMemorySnapshotStore()
	populated := mustJSON(scheduleWith(seated("01", 1, "a", "ANA", "05:30")))
	store.slots[SlotMaster] = populated
	store.slots[SlotShadow] = populated
	svc := newPersistenceForTest(store)

	result, err := svc.Save(context.Background(), engine.NewEmptySchedule(), 2, true)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RecordCount)

	shadow, _ := store.slot(SlotShadow)
	assert.Equal(t, populated, shadow)
}

func TestPersistenceSaveOverCorruptMaster(t *testing.T) {
	store := newMemorySnapshotStore()
	store.slots[SlotMaster] = `{"unrelated": true}`
	svc := newPersistenceForTest(store)

	_, err := svc.Save(context.Background(), engine.NewEmptySchedule(), 1, false)
	require.NoError(t, err)
}

func TestPersistenceSaveStoreFailure(t *testing.T) {
	store := newMemorySnapshotStore()
	store.putAllErr = errors.New("disk full")
	svc := newPersistenceForTest(store)

	_, err := svc.Save(context.Background(), scheduleWith(seated("01", 1, "a", "ANA", "05:30")), 1, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, uint64(1), svc.metrics.Snapshot().SavesFailed)
}

func TestPersistenceWipeDropsShadow(t *testing.T) {
	store := newMemorySnapshotStore()
	populated := mustJSON(scheduleWith(seated("01", 1, "a", "ANA", "05:30")))
	store.slots[SlotMaster] = populated
	store.slots[SlotMirror] = populated
	store.slots[SlotShadow] = populated
	svc := newPersistenceForTest(store)

	_, err := svc.Wipe(context.Background(), 9)
	require.NoError(t, err)

	_, ok := store.slot(SlotShadow)
	assert.False(t, ok)
	for _, key := range []string{SlotMaster, SlotMirror} {
		raw, _ := store.slot(key)
		var data models.ScheduleData
		require.NoError(t, json.Unmarshal([]byte(raw), &data))
		assert.Equal(t, 0, engine.CountRecords(data))
		assert.Len(t, data.TueThuSat, 20)
	}
}
