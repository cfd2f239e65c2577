package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

var fixedNow = time.Date(2026, 10, 15, 14, 30, 5, 0, time.UTC)

// scheduleWith seats one HD patient per entry in the Mon/Wed/Fri rotation.
func scheduleWith(patients ...seatedPatient) models.ScheduleData {
	data := engine.NewEmptySchedule()
	for _, sp := range patients {
		chairs := data.Group(sp.group)
		for i := range chairs {
			if chairs[i].ChairNumber == sp.chair {
				p := sp.patient
				chairs[i].SetTurn(sp.turn, &p)
			}
		}
	}
	return data
}

type seatedPatient struct {
	group   models.DayGroup
	chair   string
	turn    int
	patient models.Patient
}

func seated(chair string, turn int, id, name, start string) seatedPatient {
	return seatedPatient{
		group: models.DayGroupMonWedFri,
		chair: chair,
		turn:  turn,
		patient: models.Patient{
			ID:        id,
			Name:      name,
			Treatment: models.TreatmentHD,
			StartTime: start,
			Duration:  "04:00",
			Frequency: models.FrequencyThrice,
		},
	}
}

func mustJSON(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

type memorySnapshotStore struct {
	mu        sync.Mutex
	slots     map[string]string
	deleted   []string
	putAllErr error
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{slots: make(map[string]string)}
}

func (m *memorySnapshotStore) Get(ctx context.Context, key string) (*models.SnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.SnapshotRecord{SlotKey: key, Payload: v, UpdatedAt: fixedNow}, nil
}

func (m *memorySnapshotStore) Put(ctx context.Context, key, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = payload
	return nil
}

func (m *memorySnapshotStore) PutAll(ctx context.Context, slots map[string]string, order []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putAllErr != nil {
		return m.putAllErr
	}
	for _, k := range order {
		m.slots[k] = slots[k]
	}
	return nil
}

func (m *memorySnapshotStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memorySnapshotStore) slot(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[key]
	return v, ok
}

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	return nil
}
