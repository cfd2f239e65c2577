package engine

import (
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

func newPatient(id, name, start, duration string) *models.Patient {
	return &models.Patient{
		ID:        id,
		Name:      name,
		Treatment: models.TreatmentHD,
		StartTime: start,
		Duration:  duration,
		Frequency: models.FrequencyThrice,
	}
}

func seat(data models.ScheduleData, g models.DayGroup, chair string, turn int, p *models.Patient) {
	chairs := data.Group(g)
	chairs[chairIndex(chairs, chair)].SetTurn(turn, p)
}

func slot(data models.ScheduleData, g models.DayGroup, chair string, turn int) *models.Patient {
	chairs := data.Group(g)
	return chairs[chairIndex(chairs, chair)].Turn(turn)
}
