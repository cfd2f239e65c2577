package models

import "strings"

// DayGroup is one of the two weekly rotations a chair is scheduled under.
type DayGroup string

const (
	DayGroupMonWedFri DayGroup = "SEG/QUA/SEX"
	DayGroupTueThuSat DayGroup = "TER/QUI/SÁB"
)

// DayGroups lists both rotations in display order.
func DayGroups() []DayGroup {
	return []DayGroup{DayGroupMonWedFri, DayGroupTueThuSat}
}

// Valid reports whether g is a known rotation.
func (g DayGroup) Valid() bool {
	return g == DayGroupMonWedFri || g == DayGroupTueThuSat
}

// ParseDayGroup accepts the canonical labels plus the short aliases used in
// query strings, where the slash and accent are awkward to send.
func ParseDayGroup(raw string) (DayGroup, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SEG/QUA/SEX", "SEG-QUA-SEX", "SQS", "MWF", "A":
		return DayGroupMonWedFri, true
	case "TER/QUI/SÁB", "TER/QUI/SAB", "TER-QUI-SÁB", "TER-QUI-SAB", "TQS", "TTS", "B":
		return DayGroupTueThuSat, true
	}
	return "", false
}

// Weekdays returns the canonical weekdays of the rotation.
func (g DayGroup) Weekdays() []Weekday {
	switch g {
	case DayGroupMonWedFri:
		return []Weekday{Monday, Wednesday, Friday}
	case DayGroupTueThuSat:
		return []Weekday{Tuesday, Thursday, Saturday}
	default:
		return nil
	}
}

// Has reports whether the rotation runs on day.
func (g DayGroup) Has(day Weekday) bool {
	for _, d := range g.Weekdays() {
		if d == day {
			return true
		}
	}
	return false
}

// Weekday codes as they appear in clinic spreadsheets.
type Weekday string

const (
	Monday    Weekday = "SEG"
	Tuesday   Weekday = "TER"
	Wednesday Weekday = "QUA"
	Thursday  Weekday = "QUI"
	Friday    Weekday = "SEX"
	Saturday  Weekday = "SÁB"
)

// AllWeekdays lists the six working days in calendar order.
func AllWeekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// Treatment modality.
type Treatment string

const (
	TreatmentHD          Treatment = "HD"
	TreatmentHDF         Treatment = "HDF"
	TreatmentDP          Treatment = "DP"
	TreatmentConservador Treatment = "Conservador"
)

// Valid reports whether t is a known modality.
func (t Treatment) Valid() bool {
	switch t {
	case TreatmentHD, TreatmentHDF, TreatmentDP, TreatmentConservador:
		return true
	}
	return false
}

// Frequency of sessions per week.
type Frequency string

const (
	FrequencyTwice  Frequency = "2x"
	FrequencyThrice Frequency = "3x"
	FrequencyDaily  Frequency = "Diário"
	FrequencyExtra  Frequency = "Extra"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyTwice, FrequencyThrice, FrequencyDaily, FrequencyExtra:
		return true
	}
	return false
}

// TurnsPerChair is the number of session slots a chair offers per day.
const TurnsPerChair = 3

// Patient is the content of one occupied slot.
type Patient struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Treatment    Treatment `json:"treatment"`
	StartTime    string    `json:"startTime"`
	Duration     string    `json:"duration"`
	Frequency    Frequency `json:"frequency"`
	SpecificDays []Weekday `json:"specificDays,omitempty"`
	Checked      bool      `json:"checked,omitempty"`
}

// Clone returns a deep copy.
func (p *Patient) Clone() *Patient {
	if p == nil {
		return nil
	}
	c := *p
	if p.SpecificDays != nil {
		c.SpecificDays = append([]Weekday(nil), p.SpecificDays...)
	}
	return &c
}

// ChairSchedule holds the three turns of a chair in one rotation.
type ChairSchedule struct {
	ChairNumber string   `json:"chairNumber"`
	Turn1       *Patient `json:"turn1"`
	Turn2       *Patient `json:"turn2"`
	Turn3       *Patient `json:"turn3"`
}

// Turn returns the occupant of turn n (1..3), nil when empty or out of range.
func (c ChairSchedule) Turn(n int) *Patient {
	switch n {
	case 1:
		return c.Turn1
	case 2:
		return c.Turn2
	case 3:
		return c.Turn3
	}
	return nil
}

// SetTurn replaces the occupant of turn n.
func (c *ChairSchedule) SetTurn(n int, p *Patient) {
	switch n {
	case 1:
		c.Turn1 = p
	case 2:
		c.Turn2 = p
	case 3:
		c.Turn3 = p
	}
}

// Occupants lists non-empty turns in turn order.
func (c ChairSchedule) Occupants() []*Patient {
	out := make([]*Patient, 0, TurnsPerChair)
	for n := 1; n <= TurnsPerChair; n++ {
		if p := c.Turn(n); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// ScheduleData is the whole schedule: both rotations over the chair roster.
type ScheduleData struct {
	MonWedFri []ChairSchedule `json:"SEG/QUA/SEX"`
	TueThuSat []ChairSchedule `json:"TER/QUI/SÁB"`
}

// Group returns the chairs of rotation g.
func (d ScheduleData) Group(g DayGroup) []ChairSchedule {
	switch g {
	case DayGroupMonWedFri:
		return d.MonWedFri
	case DayGroupTueThuSat:
		return d.TueThuSat
	}
	return nil
}

// SetGroup replaces the chairs of rotation g.
func (d *ScheduleData) SetGroup(g DayGroup, chairs []ChairSchedule) {
	switch g {
	case DayGroupMonWedFri:
		d.MonWedFri = chairs
	case DayGroupTueThuSat:
		d.TueThuSat = chairs
	}
}

// FlatRecord is one occupied slot with its address.
type FlatRecord struct {
	Patient
	UniqueID    string   `json:"uniqueId"`
	DayGroup    DayGroup `json:"dayGroup"`
	ChairNumber string   `json:"chairNumber"`
	Turn        int      `json:"turn"`
}

// Membership addresses one slot a patient occupies.
type Membership struct {
	DayGroup    DayGroup `json:"dayGroup"`
	ChairNumber string   `json:"chairNumber"`
	Turn        int      `json:"turn"`
}

// Enrollment is a patient together with every slot it holds.
type Enrollment struct {
	Patient     Patient      `json:"patient"`
	Memberships []Membership `json:"memberships"`
}

// PatientSession is one weekly session found by a name lookup.
type PatientSession struct {
	Membership
	PatientID string    `json:"patientId"`
	Name      string    `json:"name"`
	Treatment Treatment `json:"treatment"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Duration  string    `json:"duration"`
	Days      []Weekday `json:"days"`
}

// PatientSchedule aggregates a patient's sessions for the week.
type PatientSchedule struct {
	Name            string           `json:"name"`
	Sessions        []PatientSession `json:"sessions"`
	SessionsPerWeek int              `json:"sessionsPerWeek"`
	WeeklyMinutes   int              `json:"weeklyMinutes"`
}

// Drift reports a patient id whose copies disagree across slots.
type Drift struct {
	PatientID   string       `json:"patientId"`
	Names       []string     `json:"names"`
	Fields      []string     `json:"fields"`
	Memberships []Membership `json:"memberships"`
}
