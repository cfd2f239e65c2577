package engine

import (
	"math"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// CountRecords is the number of occupied slots across both rotations.
func CountRecords(data models.ScheduleData) int {
	total := 0
	for _, g := range models.DayGroups() {
		for _, chair := range data.Group(g) {
			total += len(chair.Occupants())
		}
	}
	return total
}

// ComputeStats tallies slot occupancy. Every non-HDF slot counts as HD.
func ComputeStats(data models.ScheduleData) models.Stats {
	var s models.Stats
	names := make(map[string]struct{})
	for _, g := range models.DayGroups() {
		for _, chair := range data.Group(g) {
			for n := 1; n <= models.TurnsPerChair; n++ {
				p := chair.Turn(n)
				if p == nil {
					continue
				}
				s.TotalSlots++
				names[NormalizeName(p.Name)] = struct{}{}
				switch n {
				case 1:
					s.Turn1Count++
				case 2:
					s.Turn2Count++
				case 3:
					s.Turn3Count++
				}
				if p.Treatment == models.TreatmentHDF {
					s.HDFCount++
				} else {
					s.HDCount++
				}
			}
		}
	}
	s.UniquePatients = len(names)
	if s.TotalSlots > 0 {
		s.HDPercent = math.Round(float64(s.HDCount) / float64(s.TotalSlots) * 100)
		s.HDFPercent = math.Round(float64(s.HDFCount) / float64(s.TotalSlots) * 100)
	}
	return s
}
