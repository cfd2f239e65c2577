package engine

import (
	"errors"
	"fmt"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

var (
	ErrSlotOccupied    = errors.New("slot already occupied")
	ErrChairFull       = errors.New("all turns of the chair are occupied")
	ErrTimeOverlap     = errors.New("session overlaps another patient on the same chair")
	ErrUnknownChair    = errors.New("chair is not part of the roster")
	ErrInvalidTurn     = errors.New("turn must be between 1 and 3")
	ErrInvalidDayGroup = errors.New("unknown day group")
	ErrSlotEmpty       = errors.New("slot is empty")
	ErrPatientNotFound = errors.New("patient not found")
	ErrMissingPatient  = errors.New("patient id and name are required")
)

// ConflictError blocks a placement and names the occupant that caused it.
type ConflictError struct {
	Reason      error
	DayGroup    models.DayGroup
	ChairNumber string
	Turn        int
	Occupant    *models.Patient
}

func (e *ConflictError) Error() string {
	if e.Occupant != nil {
		return fmt.Sprintf("%v: chair %s turn %d (%s) is held by %s", e.Reason, e.ChairNumber, e.Turn, e.DayGroup, e.Occupant.Name)
	}
	return fmt.Sprintf("%v: chair %s (%s)", e.Reason, e.ChairNumber, e.DayGroup)
}

func (e *ConflictError) Unwrap() error { return e.Reason }

// Rules tune write-time validation.
type Rules struct {
	Grid           Grid
	RejectOverlaps bool
}

// DefaultRules uses the default grid and rejects overlapping sessions.
func DefaultRules() Rules {
	return Rules{Grid: DefaultGrid(), RejectOverlaps: true}
}

// SaveRequest is a modal save: one patient written to one or more chairs at a turn.
type SaveRequest struct {
	Patient  models.Patient
	Chairs   []string
	Turn     int
	DayGroup models.DayGroup
	// Editing is the slot the modal was opened from; it is cleared first.
	Editing *models.Membership
}

// PatientUpdate carries the fields an in-place edit may change. Nil fields are kept.
type PatientUpdate struct {
	Name      *string
	Treatment *models.Treatment
	StartTime *string
	Duration  *string
	Frequency *models.Frequency
	Checked   *bool
}

// TargetGroups derives the rotations a patient must be written to from its
// specific days, falling back to the given rotation.
func TargetGroups(days []models.Weekday, fallback models.DayGroup) []models.DayGroup {
	var out []models.DayGroup
	for _, g := range models.DayGroups() {
		for _, d := range days {
			if g.Has(d) {
				out = append(out, g)
				break
			}
		}
	}
	if len(out) == 0 {
		out = append(out, fallback)
	}
	return out
}

// RestrictDays keeps the days that belong to g; an empty result yields g's canonical days.
func RestrictDays(days []models.Weekday, g models.DayGroup) []models.Weekday {
	out := make([]models.Weekday, 0, len(days))
	for _, d := range days {
		if g.Has(d) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return g.Weekdays()
	}
	return out
}

// SavePatient applies a modal save and returns the next snapshot.
func SavePatient(data models.ScheduleData, rules Rules, req SaveRequest) (models.ScheduleData, error) {
	if req.Patient.ID == "" || req.Patient.Name == "" {
		return data, ErrMissingPatient
	}
	if !validTurn(req.Turn) {
		return data, ErrInvalidTurn
	}
	if !req.DayGroup.Valid() {
		return data, ErrInvalidDayGroup
	}
	if len(req.Chairs) == 0 {
		return data, ErrUnknownChair
	}
	for _, c := range req.Chairs {
		if !IsRosterChair(c) {
			return data, fmt.Errorf("%w: %s", ErrUnknownChair, c)
		}
	}

	next := Clone(data)
	if req.Editing != nil {
		clearSlot(next, *req.Editing)
	}

	for _, g := range TargetGroups(req.Patient.SpecificDays, req.DayGroup) {
		chairs := next.Group(g)
		for _, label := range req.Chairs {
			idx := chairIndex(chairs, label)
			if idx < 0 {
				return data, fmt.Errorf("%w: %s", ErrUnknownChair, label)
			}
			p := req.Patient.Clone()
			p.SpecificDays = RestrictDays(req.Patient.SpecificDays, g)
			if err := checkPlacement(chairs[idx], g, req.Turn, p, rules); err != nil {
				return data, err
			}
			chairs[idx].SetTurn(req.Turn, p)
		}
	}
	return next, nil
}

// MovePatient relocates the occupant of from to an explicit target slot.
func MovePatient(data models.ScheduleData, rules Rules, from, to models.Membership) (models.ScheduleData, error) {
	if err := validMembership(from); err != nil {
		return data, err
	}
	if err := validMembership(to); err != nil {
		return data, err
	}
	if from == to {
		return data, nil
	}
	next := Clone(data)
	p := clearSlot(next, from)
	if p == nil {
		return data, ErrSlotEmpty
	}
	if to.DayGroup != from.DayGroup {
		p.SpecificDays = to.DayGroup.Weekdays()
	}
	chairs := next.Group(to.DayGroup)
	idx := chairIndex(chairs, to.ChairNumber)
	if idx < 0 {
		return data, fmt.Errorf("%w: %s", ErrUnknownChair, to.ChairNumber)
	}
	if err := checkPlacement(chairs[idx], to.DayGroup, to.Turn, p, rules); err != nil {
		return data, err
	}
	chairs[idx].SetTurn(to.Turn, p)
	return next, nil
}

// DropPatient moves the occupant of from to the first free turn of targetChair
// in the same rotation, adopting startTime when it is given.
func DropPatient(data models.ScheduleData, rules Rules, from models.Membership, targetChair, startTime string) (models.ScheduleData, error) {
	if err := validMembership(from); err != nil {
		return data, err
	}
	if !IsRosterChair(targetChair) {
		return data, fmt.Errorf("%w: %s", ErrUnknownChair, targetChair)
	}
	next := Clone(data)
	p := clearSlot(next, from)
	if p == nil {
		return data, ErrSlotEmpty
	}
	if startTime != "" {
		p.StartTime = startTime
	}
	chairs := next.Group(from.DayGroup)
	idx := chairIndex(chairs, targetChair)
	if idx < 0 {
		return data, fmt.Errorf("%w: %s", ErrUnknownChair, targetChair)
	}
	turn := 0
	for n := 1; n <= models.TurnsPerChair; n++ {
		if chairs[idx].Turn(n) == nil {
			turn = n
			break
		}
	}
	if turn == 0 {
		return data, &ConflictError{Reason: ErrChairFull, DayGroup: from.DayGroup, ChairNumber: targetChair}
	}
	if err := checkPlacement(chairs[idx], from.DayGroup, turn, p, rules); err != nil {
		return data, err
	}
	chairs[idx].SetTurn(turn, p)
	return next, nil
}

// UpdatePatientFields edits every slot holding patientID so the copies stay identical.
func UpdatePatientFields(data models.ScheduleData, rules Rules, patientID string, upd PatientUpdate) (models.ScheduleData, error) {
	next := Clone(data)
	found := false
	for _, g := range models.DayGroups() {
		chairs := next.Group(g)
		for i := range chairs {
			for n := 1; n <= models.TurnsPerChair; n++ {
				p := chairs[i].Turn(n)
				if p == nil || p.ID != patientID {
					continue
				}
				found = true
				upd.apply(p)
				if err := checkPlacement(chairs[i], g, n, p, rules); err != nil {
					return data, err
				}
			}
		}
	}
	if !found {
		return data, ErrPatientNotFound
	}
	return next, nil
}

func (u PatientUpdate) apply(p *models.Patient) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Treatment != nil {
		p.Treatment = *u.Treatment
	}
	if u.StartTime != nil {
		p.StartTime = *u.StartTime
	}
	if u.Duration != nil {
		p.Duration = *u.Duration
	}
	if u.Frequency != nil {
		p.Frequency = *u.Frequency
	}
	if u.Checked != nil {
		p.Checked = *u.Checked
	}
}

// DeletePatient clears every slot holding patientID in both rotations.
func DeletePatient(data models.ScheduleData, patientID string) (models.ScheduleData, error) {
	next := Clone(data)
	found := false
	for _, g := range models.DayGroups() {
		chairs := next.Group(g)
		for i := range chairs {
			for n := 1; n <= models.TurnsPerChair; n++ {
				if p := chairs[i].Turn(n); p != nil && p.ID == patientID {
					chairs[i].SetTurn(n, nil)
					found = true
				}
			}
		}
	}
	if !found {
		return data, ErrPatientNotFound
	}
	return next, nil
}

// checkPlacement validates writing p into turn of chair.
func checkPlacement(chair models.ChairSchedule, g models.DayGroup, turn int, p *models.Patient, rules Rules) error {
	if occ := chair.Turn(turn); occ != nil && occ.ID != p.ID {
		return &ConflictError{Reason: ErrSlotOccupied, DayGroup: g, ChairNumber: chair.ChairNumber, Turn: turn, Occupant: occ.Clone()}
	}
	if !rules.RejectOverlaps {
		return nil
	}
	start, end := sessionRange(p)
	for n := 1; n <= models.TurnsPerChair; n++ {
		other := chair.Turn(n)
		if n == turn || other == nil || other.ID == p.ID {
			continue
		}
		os, oe := sessionRange(other)
		if start < oe && os < end {
			return &ConflictError{Reason: ErrTimeOverlap, DayGroup: g, ChairNumber: chair.ChairNumber, Turn: n, Occupant: other.Clone()}
		}
	}
	return nil
}

func sessionRange(p *models.Patient) (int, int) {
	start := TimeToMinutes(p.StartTime)
	return start, start + ParseDurationMinutes(p.Duration)
}

// clearSlot empties m in data and returns the previous occupant.
func clearSlot(data models.ScheduleData, m models.Membership) *models.Patient {
	chairs := data.Group(m.DayGroup)
	idx := chairIndex(chairs, m.ChairNumber)
	if idx < 0 {
		return nil
	}
	p := chairs[idx].Turn(m.Turn)
	chairs[idx].SetTurn(m.Turn, nil)
	return p
}

func validTurn(n int) bool {
	return n >= 1 && n <= models.TurnsPerChair
}

func validMembership(m models.Membership) error {
	if !m.DayGroup.Valid() {
		return ErrInvalidDayGroup
	}
	if !validTurn(m.Turn) {
		return ErrInvalidTurn
	}
	if !IsRosterChair(m.ChairNumber) {
		return fmt.Errorf("%w: %s", ErrUnknownChair, m.ChairNumber)
	}
	return nil
}
