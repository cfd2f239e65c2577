package engine

import (
	"fmt"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// Flatten lists every occupied slot, group by group, chair by chair, turn by turn.
func Flatten(data models.ScheduleData) []models.FlatRecord {
	out := make([]models.FlatRecord, 0)
	for _, g := range models.DayGroups() {
		for _, chair := range data.Group(g) {
			for n := 1; n <= models.TurnsPerChair; n++ {
				p := chair.Turn(n)
				if p == nil {
					continue
				}
				out = append(out, models.FlatRecord{
					Patient:     *p.Clone(),
					UniqueID:    UniqueID(p.ID, g, chair.ChairNumber, n),
					DayGroup:    g,
					ChairNumber: chair.ChairNumber,
					Turn:        n,
				})
			}
		}
	}
	return out
}

// UniqueID addresses a slot occupancy in flat listings.
func UniqueID(patientID string, g models.DayGroup, chair string, turn int) string {
	return fmt.Sprintf("%s_%s_%s_%d", patientID, g, chair, turn)
}

// Rebuild places flat records back onto an empty roster. Records pointing at
// an unknown group, chair or turn are ignored; later records win a slot.
func Rebuild(records []models.FlatRecord) models.ScheduleData {
	data := NewEmptySchedule()
	for _, rec := range records {
		chairs := data.Group(rec.DayGroup)
		idx := chairIndex(chairs, rec.ChairNumber)
		if idx < 0 || rec.Turn < 1 || rec.Turn > models.TurnsPerChair {
			continue
		}
		chairs[idx].SetTurn(rec.Turn, rec.Patient.Clone())
	}
	return data
}
