package engine

import (
	"sort"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// ScoreWindow rewards candidate starts close to a canonical shift start.
type ScoreWindow struct {
	Center    int
	Tolerance int
	Score     int
	Turn      int
	Quality   string
}

// Fallback score and label for starts outside every window.
const (
	fallbackScore   = 70
	fallbackQuality = "fit"
)

// DefaultScoreWindows are the morning, midday and afternoon shift starts.
func DefaultScoreWindows() []ScoreWindow {
	return []ScoreWindow{
		{Center: 330, Tolerance: 30, Score: 100, Turn: 1, Quality: "perfect"},
		{Center: 630, Tolerance: 60, Score: 95, Turn: 2, Quality: "near_best"},
		{Center: 930, Tolerance: 60, Score: 90, Turn: 3, Quality: "good"},
	}
}

type interval struct{ start, end int }

// Simulate lists every chair interval in g that can host a session of
// durationText. Results are ranked by score, then by chair number.
func Simulate(data models.ScheduleData, g models.DayGroup, durationText string, grid Grid, windows []ScoreWindow) []models.SlotSuggestion {
	need := ParseDurationMinutes(durationText)
	out := make([]models.SlotSuggestion, 0)
	if need <= 0 {
		return out
	}
	for _, chair := range data.Group(g) {
		for _, iv := range freeIntervals(chair, grid, need) {
			score, turn, quality := scoreStart(iv.start, windows)
			out = append(out, models.SlotSuggestion{
				DayGroup:    g,
				ChairNumber: chair.ChairNumber,
				StartTime:   MinutesToTime(iv.start),
				EndTime:     MinutesToTime(iv.start + need),
				FreeUntil:   MinutesToTime(iv.end),
				Turn:        turn,
				Score:       score,
				Quality:     quality,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return ChairNumber(out[i].ChairNumber) < ChairNumber(out[j].ChairNumber)
	})
	return out
}

// freeIntervals returns the chair's openings of at least need minutes. Every
// existing session is followed by a cleaning buffer.
func freeIntervals(chair models.ChairSchedule, grid Grid, need int) []interval {
	occ := sortedOccupants(chair)
	var out []interval
	if len(occ) == 0 {
		if grid.CloseMinutes-grid.OpenMinutes >= need {
			out = append(out, interval{grid.OpenMinutes, grid.CloseMinutes})
		}
		return out
	}
	firstStart, _ := sessionRange(occ[0].patient)
	if firstStart-grid.OpenMinutes >= need {
		out = append(out, interval{grid.OpenMinutes, firstStart})
	}
	for i := 0; i < len(occ)-1; i++ {
		_, end := sessionRange(occ[i].patient)
		from := end + grid.CleaningMinutes
		nextStart, _ := sessionRange(occ[i+1].patient)
		if nextStart-from >= need {
			out = append(out, interval{from, nextStart})
		}
	}
	_, lastEnd := sessionRange(occ[len(occ)-1].patient)
	cursor := lastEnd + grid.CleaningMinutes
	if grid.CloseMinutes-cursor >= need {
		out = append(out, interval{cursor, grid.CloseMinutes})
	}
	return out
}

func scoreStart(start int, windows []ScoreWindow) (int, int, string) {
	for _, w := range windows {
		if abs(start-w.Center) <= w.Tolerance {
			return w.Score, w.Turn, w.Quality
		}
	}
	turn := 3
	switch {
	case start < 600:
		turn = 1
	case start < 900:
		turn = 2
	}
	return fallbackScore, turn, fallbackQuality
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
