package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

func newScheduleForTest() (*ScheduleService, *[]ChangeEvent) {
	svc := NewScheduleService(engine.DefaultRules(), nil, nil)
	ids := 0
	svc.newID = func() string {
		ids++
		return "p-" + string(rune('0'+ids))
	}
	events := &[]ChangeEvent{}
	svc.Subscribe(func(ev ChangeEvent) { *events = append(*events, ev) })
	return svc, events
}

func saveRequest(name, chair string, turn int) dto.SavePatientRequest {
	return dto.SavePatientRequest{
		PatientFields: dto.PatientFields{
			Name:      name,
			Treatment: models.TreatmentHD,
			StartTime: "05:30",
			Duration:  "04:00",
			Frequency: models.FrequencyThrice,
		},
		Chairs:   []string{chair},
		Turn:     turn,
		DayGroup: models.DayGroupMonWedFri,
	}
}

func TestScheduleServiceSavePatientAssignsIDAndNotifies(t *testing.T) {
	svc, events := newScheduleForTest()

	resp, err := svc.SavePatient(context.Background(), saveRequest(" joão silva ", "01", 1))
	require.NoError(t, err)
	assert.Equal(t, "p-1", resp.Patient.ID)
	assert.Equal(t, "JOÃO SILVA", resp.Patient.Name)
	assert.Equal(t, int64(1), resp.Version)
	assert.Equal(t, 1, resp.RecordCount)

	require.Len(t, *events, 1)
	ev := (*events)[0]
	assert.Equal(t, "save_patient", ev.Reason)
	assert.False(t, ev.Persisted)
	assert.Equal(t, 1, engine.CountRecords(ev.Data))

	records := svc.Records(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, "01", records[0].ChairNumber)
}

func TestScheduleServiceConflictNamesOccupant(t *testing.T) {
	svc, events := newScheduleForTest()
	_, err := svc.SavePatient(context.Background(), saveRequest("JOAO", "01", 1))
	require.NoError(t, err)

	_, err = svc.SavePatient(context.Background(), saveRequest("MARIA", "01", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSlotOccupied))
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Contains(t, appErr.Message, "JOAO")

	assert.Len(t, *events, 1)
	assert.Equal(t, int64(1), svc.Version())
}

func TestScheduleServiceValidation(t *testing.T) {
	svc, _ := newScheduleForTest()

	req := saveRequest("", "01", 1)
	_, err := svc.SavePatient(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = saveRequest("ANA", "01", 4)
	_, err = svc.SavePatient(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = saveRequest("ANA", "42", 1)
	_, err = svc.SavePatient(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceUpdateMoveDelete(t *testing.T) {
	svc, _ := newScheduleForTest()
	saved, err := svc.SavePatient(context.Background(), saveRequest("JOAO", "01", 1))
	require.NoError(t, err)
	id := saved.Patient.ID

	name := "joão pedro"
	_, err = svc.UpdatePatient(context.Background(), id, dto.UpdatePatientRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "JOÃO PEDRO", svc.Records(context.Background())[0].Name)

	move := dto.MovePatientRequest{
		From: dto.SlotRef{DayGroup: models.DayGroupMonWedFri, ChairNumber: "01", Turn: 1},
		To:   dto.SlotRef{DayGroup: models.DayGroupMonWedFri, ChairNumber: "05", Turn: 2},
	}
	_, err = svc.MovePatient(context.Background(), move)
	require.NoError(t, err)
	rec := svc.Records(context.Background())[0]
	assert.Equal(t, "05", rec.ChairNumber)
	assert.Equal(t, 2, rec.Turn)

	resp, err := svc.DeletePatient(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.RecordCount)

	_, err = svc.DeletePatient(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceDropOnFullChair(t *testing.T) {
	svc, _ := newScheduleForTest()
	svc.Reset(scheduleWith(
		seated("02", 1, "a", "ANA", "05:30"),
		seated("02", 2, "b", "BIA", "10:30"),
		seated("02", 3, "c", "CAIO", "15:30"),
		seated("03", 1, "d", "DANI", "05:30"),
	), models.SourceMaster)

	_, err := svc.DropPatient(context.Background(), dto.DropPatientRequest{
		From:        dto.SlotRef{DayGroup: models.DayGroupMonWedFri, ChairNumber: "03", Turn: 1},
		TargetChair: "02",
		StartTime:   "05:30",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrChairFull))
	assert.Len(t, svc.Records(context.Background()), 4)
}

func TestScheduleServiceLookupAndEnrollments(t *testing.T) {
	svc, _ := newScheduleForTest()
	svc.Reset(scheduleWith(seated("04", 2, "x", "JOSÉ ALVES", "10:30")), models.SourceMaster)

	found, err := svc.Lookup(context.Background(), "jose alves")
	require.NoError(t, err)
	require.Len(t, found.Sessions, 1)
	assert.Equal(t, "14:30", found.Sessions[0].EndTime)

	_, err = svc.Lookup(context.Background(), "nobody")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	enrollments := svc.Enrollments(context.Background())
	require.Len(t, enrollments, 1)
	assert.Equal(t, "x", enrollments[0].Patient.ID)

	_, err = svc.ApplyEnrollment(context.Background(), "x", dto.EnrollmentRequest{
		PatientFields: dto.PatientFields{
			Name:      "JOSÉ ALVES",
			Treatment: models.TreatmentHDF,
			StartTime: "10:30",
			Duration:  "04:00",
			Frequency: models.FrequencyThrice,
		},
		Memberships: []dto.SlotRef{
			{DayGroup: models.DayGroupMonWedFri, ChairNumber: "04", Turn: 2},
			{DayGroup: models.DayGroupTueThuSat, ChairNumber: "06", Turn: 2},
		},
	})
	require.NoError(t, err)
	records := svc.Records(context.Background())
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, models.TreatmentHDF, r.Treatment)
	}
	assert.Empty(t, svc.Drift(context.Background()))
}

func TestScheduleServiceResetAndWipeEvents(t *testing.T) {
	svc, events := newScheduleForTest()

	version := svc.Reset(scheduleWith(seated("01", 1, "a", "ANA", "05:30")), models.SourceMirror)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, models.SourceMirror, svc.Get(context.Background()).Source)

	_, err := svc.Wipe(context.Background())
	require.NoError(t, err)

	require.Len(t, *events, 2)
	assert.True(t, (*events)[0].Persisted)
	assert.True(t, (*events)[1].Wipe)
	assert.True(t, (*events)[1].AllowEmpty)
	assert.Equal(t, 0, engine.CountRecords((*events)[1].Data))
}

func TestScheduleServiceReplaceRecordsRoundTrip(t *testing.T) {
	svc, _ := newScheduleForTest()
	svc.Reset(scheduleWith(
		seated("01", 1, "a", "ANA", "05:30"),
		seated("Leito 09", 3, "b", "BIA", "15:30"),
	), models.SourceMaster)

	records := svc.Records(context.Background())
	resp, err := svc.ReplaceRecords(context.Background(), dto.ReplaceRecordsRequest{Records: records})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.RecordCount)
	assert.Equal(t, records, svc.Records(context.Background()))
}

func TestScheduleServiceMatrixRejectsUnknownGroup(t *testing.T) {
	svc, _ := newScheduleForTest()
	_, err := svc.Matrix(context.Background(), "XYZ")
	require.Error(t, err)

	m, err := svc.Matrix(context.Background(), models.DayGroupTueThuSat)
	require.NoError(t, err)
	assert.Len(t, m.Chairs, 20)
	assert.Equal(t, svc.TimeSlots(), m.Slots)
}

func TestScheduleServiceCancelledContext(t *testing.T) {
	svc, _ := newScheduleForTest()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.SavePatient(ctx, saveRequest("ANA", "01", 1))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)
}
