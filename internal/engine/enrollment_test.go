package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

func TestEnrollmentsGroupByPatient(t *testing.T) {
	data := NewEmptySchedule()
	seat(data, mwf, "01", 1, newPatient("a", "ANA", "05:30", "04:00"))
	seat(data, tts, "01", 1, newPatient("a", "ANA", "05:30", "04:00"))
	seat(data, mwf, "02", 2, newPatient("b", "BIA", "10:00", "04:00"))

	list := Enrollments(data)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Patient.ID)
	assert.Len(t, list[0].Memberships, 2)
	assert.Len(t, list[1].Memberships, 1)
}

func TestApplyEnrollmentReplacesMemberships(t *testing.T) {
	data := NewEmptySchedule()
	seat(data, mwf, "01", 1, newPatient("a", "ANA", "05:30", "04:00"))
	p := *newPatient("a", "ANA", "06:00", "03:30")
	p.SpecificDays = models.AllWeekdays()

	next, err := ApplyEnrollment(data, DefaultRules(), models.Enrollment{
		Patient: p,
		Memberships: []models.Membership{
			{DayGroup: mwf, ChairNumber: "03", Turn: 1},
			{DayGroup: tts, ChairNumber: "03", Turn: 1},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, slot(next, mwf, "01", 1))
	assert.Equal(t, "06:00", slot(next, mwf, "03", 1).StartTime)
	assert.Equal(t, mwf.Weekdays(), slot(next, mwf, "03", 1).SpecificDays)
	assert.Equal(t, tts.Weekdays(), slot(next, tts, "03", 1).SpecificDays)
	assert.Empty(t, DetectDrift(next))
}

func TestDetectDrift(t *testing.T) {
	data := NewEmptySchedule()
	seat(data, mwf, "01", 1, newPatient("a", "ANA", "05:30", "04:00"))
	seat(data, tts, "01", 1, newPatient("a", "ANA SOUZA", "06:00", "04:00"))

	drift := DetectDrift(data)
	require.Len(t, drift, 1)
	assert.Equal(t, "a", drift[0].PatientID)
	assert.Equal(t, []string{"name", "startTime"}, drift[0].Fields)
	assert.Equal(t, []string{"ANA", "ANA SOUZA"}, drift[0].Names)
	assert.Len(t, drift[0].Memberships, 2)
}

func TestFindSessions(t *testing.T) {
	data := Normalize(NewEmptySchedule())
	seat(data, mwf, "01", 1, newPatient("a", "José", "05:30", "04:00"))
	seat(data, tts, "02", 2, newPatient("b", "JOSE", "10:00", "03:30"))
	seat(data, tts, "03", 2, newPatient("c", "JOSEFA", "10:00", "03:30"))

	sched := FindSessions(data, " jose ")
	require.Len(t, sched.Sessions, 2)
	assert.Equal(t, "09:30", sched.Sessions[0].EndTime)
	assert.Equal(t, 6, sched.SessionsPerWeek)
	assert.Equal(t, 3*240+3*210, sched.WeeklyMinutes)
	assert.Empty(t, FindSessions(data, "").Sessions)
}
