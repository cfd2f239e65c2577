package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

func TestNormalizeRebuildsRoster(t *testing.T) {
	raw := models.ScheduleData{
		MonWedFri: []models.ChairSchedule{
			{ChairNumber: "03", Turn1: newPatient("a", "ANA", "05:30", "04:00")},
			{ChairNumber: "77", Turn1: newPatient("x", "GHOST", "05:30", "04:00")},
		},
	}

	out := Normalize(raw)

	require.Len(t, out.MonWedFri, 20)
	require.Len(t, out.TueThuSat, 20)
	p := slot(out, models.DayGroupMonWedFri, "03", 1)
	require.NotNil(t, p)
	assert.Equal(t, []models.Weekday{models.Monday, models.Wednesday, models.Friday}, p.SpecificDays)
	assert.Equal(t, 1, CountRecords(out))
	assert.Nil(t, raw.MonWedFri[0].Turn1.SpecificDays, "input must stay untouched")
}

func TestDecodeSnapshot(t *testing.T) {
	data, err := DecodeSnapshot([]byte(`{"TER/QUI/SÁB":[{"chairNumber":"Leito 09","turn2":{"id":"b","name":"BETO","treatment":"HDF","startTime":"10:00","duration":"04:00","frequency":"3x"}}]}`))
	require.NoError(t, err)
	p := slot(data, models.DayGroupTueThuSat, BedChairLabel, 2)
	require.NotNil(t, p)
	assert.Equal(t, models.TreatmentHDF, p.Treatment)
	assert.Equal(t, []models.Weekday{models.Tuesday, models.Thursday, models.Saturday}, p.SpecificDays)

	_, err = DecodeSnapshot([]byte(`{not json`))
	assert.True(t, errors.Is(err, ErrMalformedSnapshot))

	_, err = DecodeSnapshot([]byte(`{"other":[]}`))
	assert.True(t, errors.Is(err, ErrMalformedSnapshot))
}

func TestFlattenRebuildRoundTrip(t *testing.T) {
	data := NewEmptySchedule()
	seat(data, models.DayGroupMonWedFri, "01", 1, newPatient("a", "ANA", "05:30", "04:00"))
	seat(data, models.DayGroupMonWedFri, "01", 3, newPatient("b", "BIA", "15:00", "03:30"))
	seat(data, models.DayGroupTueThuSat, BedChairLabel, 2, newPatient("a", "ANA", "10:00", "04:00"))
	data = Normalize(data)

	flat := Flatten(data)
	require.Len(t, flat, 3)
	assert.Equal(t, "a_SEG/QUA/SEX_01_1", flat[0].UniqueID)
	assert.Equal(t, flat, Flatten(Rebuild(flat)))
	assert.Equal(t, data, Rebuild(flat))
}

func TestRebuildIgnoresUnknownAddresses(t *testing.T) {
	records := []models.FlatRecord{
		{Patient: *newPatient("a", "ANA", "05:30", "04:00"), DayGroup: models.DayGroupMonWedFri, ChairNumber: "42", Turn: 1},
		{Patient: *newPatient("b", "BIA", "05:30", "04:00"), DayGroup: models.DayGroupMonWedFri, ChairNumber: "01", Turn: 4},
		{Patient: *newPatient("c", "CAIO", "05:30", "04:00"), DayGroup: "DOM", ChairNumber: "01", Turn: 1},
	}
	assert.Equal(t, 0, CountRecords(Rebuild(records)))
}

func TestComputeStats(t *testing.T) {
	data := NewEmptySchedule()
	hdf := newPatient("a", "Ana", "05:30", "04:00")
	hdf.Treatment = models.TreatmentHDF
	seat(data, models.DayGroupMonWedFri, "01", 1, hdf)
	seat(data, models.DayGroupTueThuSat, "01", 1, hdf.Clone())
	dp := newPatient("b", "Bia", "10:00", "04:00")
	dp.Treatment = models.TreatmentDP
	seat(data, models.DayGroupMonWedFri, "02", 2, dp)

	s := ComputeStats(data)

	assert.Equal(t, 3, s.TotalSlots)
	assert.Equal(t, 2, s.UniquePatients)
	assert.Equal(t, 2, s.HDFCount)
	assert.Equal(t, 1, s.HDCount)
	assert.Equal(t, float64(67), s.HDFPercent)
	assert.Equal(t, float64(33), s.HDPercent)
	assert.Equal(t, 2, s.Turn1Count)
	assert.Equal(t, 1, s.Turn2Count)
	assert.Equal(t, 0, s.Turn3Count)
	assert.Equal(t, models.Stats{}, ComputeStats(NewEmptySchedule()))
}

func TestSavePolicy(t *testing.T) {
	var policy SavePolicy
	populated := SnapshotSummary{Present: true, RecordCount: 4}
	empty := Summarize(NewEmptySchedule())

	assert.ErrorIs(t, policy.Evaluate(populated, empty, false), ErrDataProtected)
	assert.NoError(t, policy.Evaluate(populated, empty, true))
	assert.NoError(t, policy.Evaluate(SnapshotSummary{}, empty, false))
	assert.NoError(t, policy.Evaluate(SnapshotSummary{Present: true, Corrupt: true}, empty, false))
	assert.NoError(t, policy.Evaluate(populated, SnapshotSummary{Present: true, RecordCount: 1}, false))
}
