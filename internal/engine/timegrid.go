// Package engine holds the pure scheduling core: time math, the chair roster,
// the occupancy matrix, capacity analysis, the allocation simulator, the bulk
// import resolver and slot mutations. Nothing here touches I/O; every
// mutation returns a new models.ScheduleData.
package engine

import (
	"fmt"
	"math"
	"strings"
)

// Grid is the operating-hours configuration all layout and analysis math is relative to.
type Grid struct {
	OpenMinutes            int
	CloseMinutes           int
	SlotMinutes            int
	SetupMinutes           int
	StandardSessionMinutes int
	CleaningMinutes        int
}

// DefaultGrid is 05:30 to 21:00 on a 30 minute grid with a 90 minute setup block.
func DefaultGrid() Grid {
	return Grid{
		OpenMinutes:            330,
		CloseMinutes:           1260,
		SlotMinutes:            30,
		SetupMinutes:           90,
		StandardSessionMinutes: 240,
		CleaningMinutes:        30,
	}
}

// MinimumGap is the shortest interval that hosts a standard session plus cleaning.
func (g Grid) MinimumGap() int {
	return g.StandardSessionMinutes + g.CleaningMinutes
}

// SnapToGrid floors minutes onto the grid.
func (g Grid) SnapToGrid(minutes int) int {
	if g.SlotMinutes <= 0 {
		return minutes
	}
	return floorDiv(minutes, g.SlotMinutes) * g.SlotMinutes
}

// SpanSlots is the number of grid rows a duration covers, rounded up.
func (g Grid) SpanSlots(minutes int) int {
	if minutes <= 0 || g.SlotMinutes <= 0 {
		return 0
	}
	return (minutes + g.SlotMinutes - 1) / g.SlotMinutes
}

// Slots lists every grid row from open to close inclusive.
func (g Grid) Slots() []int {
	if g.SlotMinutes <= 0 || g.CloseMinutes < g.OpenMinutes {
		return nil
	}
	out := make([]int, 0, (g.CloseMinutes-g.OpenMinutes)/g.SlotMinutes+1)
	for m := g.OpenMinutes; m <= g.CloseMinutes; m += g.SlotMinutes {
		out = append(out, m)
	}
	return out
}

// SlotLabels renders Slots as HH:MM strings.
func (g Grid) SlotLabels() []string {
	slots := g.Slots()
	out := make([]string, len(slots))
	for i, m := range slots {
		out[i] = MinutesToTime(m)
	}
	return out
}

// SnapToGrid floors minutes onto the default 30 minute grid.
func SnapToGrid(minutes int) int {
	return DefaultGrid().SnapToGrid(minutes)
}

var timeSeparators = strings.NewReplacer("h", ":", ".", ":", ",", ":")

// TimeToMinutes parses "HH:MM", "HH.MM", "HH,MM" or "14h30" into minutes since
// midnight. Unparseable parts count as zero; it never fails.
func TimeToMinutes(text string) int {
	clean := timeSeparators.Replace(strings.ToLower(strings.TrimSpace(text)))
	if clean == "" {
		return 0
	}
	parts := strings.Split(clean, ":")
	h := leadingInt(parts[0])
	m := 0
	if len(parts) > 1 {
		m = leadingInt(parts[1])
	}
	return h*60 + m
}

// ParseDurationMinutes reads a duration written as "HH:MM" hours and minutes.
func ParseDurationMinutes(text string) int {
	return TimeToMinutes(text)
}

// MinutesToTime formats minutes as a zero padded "HH:MM". Values past 24h are not wrapped.
func MinutesToTime(minutes int) string {
	h := floorDiv(minutes, 60)
	m := minutes - h*60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// MinutesToTimeFloat rounds fractional minutes before formatting.
func MinutesToTimeFloat(minutes float64) string {
	return MinutesToTime(int(math.Round(minutes)))
}

// leadingInt mimics a lenient integer prefix parse: "08abc" is 8, "abc" is 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	sign := 1
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1_000_000 {
			break
		}
	}
	return sign * n
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
