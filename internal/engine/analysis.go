package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// Candidate strategies.
const (
	StrategyLateStart    = "late_start"
	StrategyAnticipation = "anticipation"
)

// lateShiftStart is the earliest start considered for anticipation (13:00).
const lateShiftStart = 13 * 60

// AnalysisOptions configures a capacity analysis run.
type AnalysisOptions struct {
	Grid Grid
	// EffectiveRatio is the operational ceiling as a fraction of installed capacity.
	EffectiveRatio float64
	Strategy       string
	// LateStartThreshold in minutes; a first session at or after it is flagged.
	LateStartThreshold int
}

// DefaultAnalysisOptions flags first sessions starting at 06:00 or later at full capacity.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Grid:               DefaultGrid(),
		EffectiveRatio:     1.0,
		Strategy:           StrategyLateStart,
		LateStartThreshold: 6 * 60,
	}
}

// NormalizeStrategy maps free text to a known strategy, defaulting to late start.
func NormalizeStrategy(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), StrategyAnticipation) {
		return StrategyAnticipation
	}
	return StrategyLateStart
}

// Analyze computes capacity, gaps and optimization candidates. It never fails;
// malformed times count as midnight.
func Analyze(data models.ScheduleData, opts AnalysisOptions) models.OperationalReport {
	strategy := NormalizeStrategy(opts.Strategy)
	report := models.OperationalReport{
		Strategy:    strategy,
		Capacity:    Capacity(data, opts.EffectiveRatio),
		Gaps:        make([]models.Gap, 0),
		Candidates:  make([]models.OptimizationCandidate, 0),
		GeneratedAt: time.Now().UTC(),
	}
	for _, g := range models.DayGroups() {
		for _, chair := range data.Group(g) {
			gaps := chairGaps(chair, g, opts.Grid)
			report.Gaps = append(report.Gaps, gaps...)
			switch strategy {
			case StrategyAnticipation:
				report.Candidates = append(report.Candidates, anticipationCandidates(chair, g, gaps)...)
			default:
				if c, ok := lateStartCandidate(chair, g, opts); ok {
					report.Candidates = append(report.Candidates, c)
				}
			}
		}
	}
	return report
}

// Capacity sums installed, effective and used slots.
func Capacity(data models.ScheduleData, ratio float64) models.CapacityReport {
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	chairs := len(chairRoster)
	groups := len(models.DayGroups())
	installed := chairs * models.TurnsPerChair * groups
	effective := int(math.Round(float64(installed) * ratio))
	stats := ComputeStats(data)

	r := models.CapacityReport{
		Chairs:            chairs,
		TurnsPerDay:       models.TurnsPerChair,
		DayGroups:         groups,
		InstalledCapacity: installed,
		EffectiveRatio:    ratio,
		EffectiveCapacity: effective,
		RealCapacity:      stats.TotalSlots,
		UniquePatients:    stats.UniquePatients,
	}
	if effective > r.RealCapacity {
		r.AbsorbableCapacity = effective - r.RealCapacity
	}
	if effective > 0 {
		r.EfficiencyRate = roundTenth(float64(r.RealCapacity) / float64(effective) * 100)
	}
	if installed > 0 {
		r.OccupancyRate = roundTenth(float64(r.RealCapacity) / float64(installed) * 100)
	}
	return r
}

// chairGaps walks the chair from opening and records every free interval that
// fits a standard session plus cleaning.
func chairGaps(chair models.ChairSchedule, g models.DayGroup, grid Grid) []models.Gap {
	var gaps []models.Gap
	minimum := grid.MinimumGap()
	cursor := grid.OpenMinutes
	record := func(from, to int) {
		gaps = append(gaps, models.Gap{
			DayGroup:              g,
			ChairNumber:           chair.ChairNumber,
			StartTime:             MinutesToTime(from),
			EndTime:               MinutesToTime(to),
			DurationMinutes:       to - from,
			CanFitStandardSession: true,
		})
	}
	for _, tp := range sortedOccupants(chair) {
		start, end := sessionRange(tp.patient)
		if start-cursor >= minimum {
			record(cursor, start)
		}
		if next := end + grid.CleaningMinutes; next > cursor {
			cursor = next
		}
	}
	if grid.CloseMinutes-cursor >= minimum {
		record(cursor, grid.CloseMinutes)
	}
	return gaps
}

func lateStartCandidate(chair models.ChairSchedule, g models.DayGroup, opts AnalysisOptions) (models.OptimizationCandidate, bool) {
	occ := sortedOccupants(chair)
	if len(occ) == 0 {
		return models.OptimizationCandidate{}, false
	}
	first := occ[0]
	start := TimeToMinutes(first.patient.StartTime)
	if start < opts.LateStartThreshold {
		return models.OptimizationCandidate{}, false
	}
	lost := start - opts.Grid.OpenMinutes
	return models.OptimizationCandidate{
		Kind:           models.CandidateLateStart,
		PatientID:      first.patient.ID,
		PatientName:    first.patient.Name,
		ChairNumber:    chair.ChairNumber,
		Turn:           first.turn,
		DayGroup:       g,
		CurrentStart:   first.patient.StartTime,
		SuggestedStart: MinutesToTime(opts.Grid.OpenMinutes),
		ImpactMinutes:  lost,
		Impact:         fmt.Sprintf("%d min lost at opening", lost),
		Urgency:        urgencyFor(lost, 120, 60),
	}, true
}

// anticipationCandidates flags late-shift patients that fit an earlier gap on the same chair.
func anticipationCandidates(chair models.ChairSchedule, g models.DayGroup, gaps []models.Gap) []models.OptimizationCandidate {
	var out []models.OptimizationCandidate
	for _, tp := range sortedOccupants(chair) {
		start, end := sessionRange(tp.patient)
		if start < lateShiftStart {
			continue
		}
		need := end - start
		for _, gap := range gaps {
			gStart, gEnd := TimeToMinutes(gap.StartTime), TimeToMinutes(gap.EndTime)
			if gEnd > start || gEnd-gStart < need {
				continue
			}
			saved := start - gStart
			out = append(out, models.OptimizationCandidate{
				Kind:           models.CandidateAnticipation,
				PatientID:      tp.patient.ID,
				PatientName:    tp.patient.Name,
				ChairNumber:    chair.ChairNumber,
				Turn:           tp.turn,
				DayGroup:       g,
				CurrentStart:   tp.patient.StartTime,
				SuggestedStart: gap.StartTime,
				ImpactMinutes:  saved,
				Impact:         fmt.Sprintf("saves %.1fh", float64(saved)/60),
				Urgency:        urgencyFor(saved, 240, 120),
			})
			break
		}
	}
	return out
}

func urgencyFor(minutes, high, medium int) models.Urgency {
	switch {
	case minutes >= high:
		return models.UrgencyHigh
	case minutes >= medium:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
