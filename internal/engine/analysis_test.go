package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

func TestCapacityIdentities(t *testing.T) {
	data := NewEmptySchedule()
	seat(data, mwf, "01", 1, newPatient("a", "ANA", "05:30", "04:00"))
	seat(data, tts, "01", 1, newPatient("a", "ANA", "05:30", "04:00"))
	seat(data, mwf, "02", 1, newPatient("b", "BIA", "05:30", "04:00"))

	full := Capacity(data, 1.0)
	assert.Equal(t, 120, full.InstalledCapacity)
	assert.Equal(t, full.Chairs*3*2, full.InstalledCapacity)
	assert.Equal(t, 120, full.EffectiveCapacity)
	assert.Equal(t, 3, full.RealCapacity)
	assert.Equal(t, 2, full.UniquePatients)
	assert.Equal(t, 117, full.AbsorbableCapacity)
	assert.Equal(t, 2.5, full.OccupancyRate)
	assert.LessOrEqual(t, full.RealCapacity, full.InstalledCapacity)

	reduced := Capacity(data, 0.85)
	assert.Equal(t, 102, reduced.EffectiveCapacity)
	assert.Equal(t, 2.9, reduced.EfficiencyRate)

	assert.Equal(t, 1.0, Capacity(data, 7).EffectiveRatio)
}

func TestGapsRespectMinimumAndNeverOverlap(t *testing.T) {
	data := NewEmptySchedule()
	seat(data, mwf, "01", 1, newPatient("a", "ANA", "05:30", "04:00"))
	seat(data, mwf, "01", 2, newPatient("b", "BIA", "15:00", "04:00"))
	seat(data, mwf, "02", 1, newPatient("c", "CAIO", "06:00", "04:00"))
	seat(data, mwf, "02", 2, newPatient("d", "DANI", "08:00", "01:00"))

	report := Analyze(data, DefaultAnalysisOptions())

	byChair := make(map[string][]models.Gap)
	for _, g := range report.Gaps {
		assert.GreaterOrEqual(t, g.DurationMinutes, 270)
		assert.True(t, g.CanFitStandardSession)
		if g.DayGroup == mwf {
			byChair[g.ChairNumber] = append(byChair[g.ChairNumber], g)
		}
	}
	require.Len(t, byChair["01"], 1)
	assert.Equal(t, "10:00", byChair["01"][0].StartTime)
	assert.Equal(t, "15:00", byChair["01"][0].EndTime)

	// a nested short session must not pull the cursor back
	require.Len(t, byChair["02"], 1)
	assert.Equal(t, "10:30", byChair["02"][0].StartTime)
	assert.Equal(t, "21:00", byChair["02"][0].EndTime)

	for _, gaps := range byChair {
		for i := 1; i < len(gaps); i++ {
			assert.LessOrEqual(t, TimeToMinutes(gaps[i-1].EndTime), TimeToMinutes(gaps[i].StartTime))
		}
	}
	// 38 empty chairs each contribute one full-day gap
	assert.Len(t, report.Gaps, 40)
}

func TestTrailingGapNeedsSessionPlusCleaning(t *testing.T) {
	data := NewEmptySchedule()
	// cursor lands at 16:30, leaving 270 minutes to close
	seat(data, mwf, "01", 1, newPatient("a", "ANA", "12:00", "04:00"))
	// cursor lands at 17:00, leaving 240 minutes
	seat(data, mwf, "02", 1, newPatient("b", "BIA", "12:30", "04:00"))

	gaps := chairGaps(data.MonWedFri[0], mwf, DefaultGrid())
	require.Len(t, gaps, 2)
	assert.Equal(t, "16:30", gaps[1].StartTime)
	assert.Len(t, chairGaps(data.MonWedFri[1], mwf, DefaultGrid()), 1)
}

func TestLateStartCandidates(t *testing.T) {
	data := NewEmptySchedule()
	seat(data, tts, "03", 2, newPatient("a", "ANA", "07:00", "04:00"))
	seat(data, tts, "04", 1, newPatient("b", "BIA", "05:30", "04:00"))

	report := Analyze(data, DefaultAnalysisOptions())
	require.Len(t, report.Candidates, 1)
	c := report.Candidates[0]
	assert.Equal(t, models.CandidateLateStart, c.Kind)
	assert.Equal(t, "ANA", c.PatientName)
	assert.Equal(t, "03", c.ChairNumber)
	assert.Equal(t, 2, c.Turn)
	assert.Equal(t, tts, c.DayGroup)
	assert.Equal(t, "05:30", c.SuggestedStart)
	assert.Equal(t, 90, c.ImpactMinutes)
	assert.Equal(t, models.UrgencyMedium, c.Urgency)
	assert.Equal(t, StrategyLateStart, report.Strategy)
}

func TestAnticipationCandidates(t *testing.T) {
	data := NewEmptySchedule()
	seat(data, mwf, "01", 1, newPatient("a", "ANA", "05:30", "04:00"))
	seat(data, mwf, "01", 3, newPatient("b", "BIA", "16:00", "04:00"))
	seat(data, mwf, "02", 1, newPatient("d", "DANI", "06:00", "04:00"))
	seat(data, mwf, "02", 3, newPatient("c", "CAIO", "13:00", "04:00"))

	opts := DefaultAnalysisOptions()
	opts.Strategy = "ANTICIPATION"
	report := Analyze(data, opts)

	require.Len(t, report.Candidates, 1)
	c := report.Candidates[0]
	assert.Equal(t, models.CandidateAnticipation, c.Kind)
	assert.Equal(t, "BIA", c.PatientName)
	assert.Equal(t, "10:00", c.SuggestedStart)
	assert.Equal(t, 360, c.ImpactMinutes)
	assert.Equal(t, "saves 6.0h", c.Impact)
	assert.Equal(t, models.UrgencyHigh, c.Urgency)
}

func TestAnalyzeToleratesMalformedTimes(t *testing.T) {
	data := NewEmptySchedule()
	seat(data, mwf, "01", 1, newPatient("a", "ANA", "??", "garbage"))
	assert.NotPanics(t, func() { Analyze(data, DefaultAnalysisOptions()) })
	assert.Equal(t, StrategyLateStart, NormalizeStrategy("unknown"))
}
