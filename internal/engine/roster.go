package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

const (
	// BedChairLabel is the one roster position that is a bed rather than a chair.
	BedChairLabel = "Leito 09"
	// UnassignedChair marks an import row with no chair cell.
	UnassignedChair = "99"
	// unknownChairNumber sorts labels without digits last.
	unknownChairNumber = 999
)

var chairRoster = []string{
	"01", "02", "03", "04", "05", "06", "07", "08", BedChairLabel, "10",
	"11", "12", "13", "14", "15", "16", "17", "18", "19", "20",
}

var firstNumber = regexp.MustCompile(`\d+`)

// ChairRoster returns the canonical chair labels in display order.
func ChairRoster() []string {
	return append([]string(nil), chairRoster...)
}

// IsRosterChair reports whether label is one of the canonical chairs.
func IsRosterChair(label string) bool {
	for _, c := range chairRoster {
		if c == label {
			return true
		}
	}
	return false
}

// ChairNumber extracts the numeric position of a chair label used for ordering.
// A bed label without digits counts as 9; other labels without digits sort last.
func ChairNumber(label string) int {
	if label == "" {
		return unknownChairNumber
	}
	match := firstNumber.FindString(label)
	if match == "" {
		if strings.Contains(strings.ToLower(label), "leito") {
			return 9
		}
		return unknownChairNumber
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return unknownChairNumber
	}
	return n
}

// ResolveChairLabel maps a free-text chair cell to a roster label.
// "9" becomes the bed label; other numbers match the roster by value and fall
// back to a zero padded string; an empty cell yields UnassignedChair.
func ResolveChairLabel(raw string) string {
	match := firstNumber.FindString(raw)
	if match == "" {
		return UnassignedChair
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return UnassignedChair
	}
	if n == 9 {
		return BedChairLabel
	}
	for _, c := range chairRoster {
		if ChairNumber(c) == n {
			return c
		}
	}
	return fmt.Sprintf("%02d", n)
}

// NewEmptySchedule builds both rotations over the roster with every turn empty.
func NewEmptySchedule() models.ScheduleData {
	var data models.ScheduleData
	for _, g := range models.DayGroups() {
		chairs := make([]models.ChairSchedule, len(chairRoster))
		for i, label := range chairRoster {
			chairs[i] = models.ChairSchedule{ChairNumber: label}
		}
		data.SetGroup(g, chairs)
	}
	return data
}

func chairIndex(chairs []models.ChairSchedule, label string) int {
	for i := range chairs {
		if chairs[i].ChairNumber == label {
			return i
		}
	}
	return -1
}
