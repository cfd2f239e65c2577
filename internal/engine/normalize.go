package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// ErrMalformedSnapshot is returned when a payload is not a schedule document.
var ErrMalformedSnapshot = errors.New("snapshot is not a schedule document")

// Normalize rebuilds data on the canonical roster. Unknown chairs are dropped,
// missing chairs are added empty, and patients without specificDays receive
// their rotation's canonical days. The input is not modified.
func Normalize(data models.ScheduleData) models.ScheduleData {
	out := NewEmptySchedule()
	for _, g := range models.DayGroups() {
		src := data.Group(g)
		if src == nil {
			continue
		}
		chairs := out.Group(g)
		for i := range chairs {
			idx := chairIndex(src, chairs[i].ChairNumber)
			if idx < 0 {
				continue
			}
			for n := 1; n <= models.TurnsPerChair; n++ {
				chairs[i].SetTurn(n, hydrate(src[idx].Turn(n), g))
			}
		}
	}
	return out
}

func hydrate(p *models.Patient, g models.DayGroup) *models.Patient {
	if p == nil {
		return nil
	}
	c := p.Clone()
	if len(c.SpecificDays) == 0 {
		c.SpecificDays = g.Weekdays()
	}
	return c
}

// Clone deep copies data.
func Clone(data models.ScheduleData) models.ScheduleData {
	var out models.ScheduleData
	for _, g := range models.DayGroups() {
		src := data.Group(g)
		if src == nil {
			continue
		}
		chairs := make([]models.ChairSchedule, len(src))
		for i, c := range src {
			chairs[i] = models.ChairSchedule{
				ChairNumber: c.ChairNumber,
				Turn1:       c.Turn1.Clone(),
				Turn2:       c.Turn2.Clone(),
				Turn3:       c.Turn3.Clone(),
			}
		}
		out.SetGroup(g, chairs)
	}
	return out
}

// DecodeSnapshot parses a stored or uploaded document and normalizes it. The
// document must be valid JSON carrying at least one rotation key.
func DecodeSnapshot(raw []byte) (models.ScheduleData, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return models.ScheduleData{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	hasGroup := false
	for _, g := range models.DayGroups() {
		if v, ok := probe[string(g)]; ok && string(v) != "null" {
			hasGroup = true
		}
	}
	if !hasGroup {
		return models.ScheduleData{}, ErrMalformedSnapshot
	}
	var data models.ScheduleData
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.ScheduleData{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return Normalize(data), nil
}
