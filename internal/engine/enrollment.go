package engine

import (
	"sort"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// Enrollments groups occupied slots by patient id. The patient content is taken
// from the first slot in flatten order.
func Enrollments(data models.ScheduleData) []models.Enrollment {
	index := make(map[string]int)
	out := make([]models.Enrollment, 0)
	for _, rec := range Flatten(data) {
		m := models.Membership{DayGroup: rec.DayGroup, ChairNumber: rec.ChairNumber, Turn: rec.Turn}
		if i, ok := index[rec.ID]; ok {
			out[i].Memberships = append(out[i].Memberships, m)
			continue
		}
		index[rec.ID] = len(out)
		out = append(out, models.Enrollment{Patient: rec.Patient, Memberships: []models.Membership{m}})
	}
	return out
}

// ApplyEnrollment replaces every slot of the patient with its memberships,
// writing identical content to each. SpecificDays are narrowed per rotation.
func ApplyEnrollment(data models.ScheduleData, rules Rules, e models.Enrollment) (models.ScheduleData, error) {
	if e.Patient.ID == "" || e.Patient.Name == "" {
		return data, ErrMissingPatient
	}
	for _, m := range e.Memberships {
		if err := validMembership(m); err != nil {
			return data, err
		}
	}
	next, err := DeletePatient(data, e.Patient.ID)
	if err != nil {
		next = Clone(data)
	}
	for _, m := range e.Memberships {
		chairs := next.Group(m.DayGroup)
		idx := chairIndex(chairs, m.ChairNumber)
		if idx < 0 {
			return data, ErrUnknownChair
		}
		p := e.Patient.Clone()
		p.SpecificDays = RestrictDays(e.Patient.SpecificDays, m.DayGroup)
		if err := checkPlacement(chairs[idx], m.DayGroup, m.Turn, p, rules); err != nil {
			return data, err
		}
		chairs[idx].SetTurn(m.Turn, p)
	}
	return next, nil
}

// DetectDrift reports patient ids whose copies disagree on shared fields.
// SpecificDays are excluded since each rotation holds its own subset.
func DetectDrift(data models.ScheduleData) []models.Drift {
	type copyOf struct {
		m models.Membership
		p models.Patient
	}
	byID := make(map[string][]copyOf)
	order := make([]string, 0)
	for _, rec := range Flatten(data) {
		if _, ok := byID[rec.ID]; !ok {
			order = append(order, rec.ID)
		}
		byID[rec.ID] = append(byID[rec.ID], copyOf{
			m: models.Membership{DayGroup: rec.DayGroup, ChairNumber: rec.ChairNumber, Turn: rec.Turn},
			p: rec.Patient,
		})
	}

	out := make([]models.Drift, 0)
	for _, id := range order {
		copies := byID[id]
		if len(copies) < 2 {
			continue
		}
		first := copies[0].p
		fields := make(map[string]struct{})
		names := []string{first.Name}
		for _, c := range copies[1:] {
			for _, f := range diffFields(first, c.p) {
				fields[f] = struct{}{}
			}
			if c.p.Name != first.Name && !contains(names, c.p.Name) {
				names = append(names, c.p.Name)
			}
		}
		if len(fields) == 0 {
			continue
		}
		d := models.Drift{PatientID: id, Names: names}
		for f := range fields {
			d.Fields = append(d.Fields, f)
		}
		sort.Strings(d.Fields)
		for _, c := range copies {
			d.Memberships = append(d.Memberships, c.m)
		}
		out = append(out, d)
	}
	return out
}

func diffFields(a, b models.Patient) []string {
	var out []string
	if a.Name != b.Name {
		out = append(out, "name")
	}
	if a.Treatment != b.Treatment {
		out = append(out, "treatment")
	}
	if a.StartTime != b.StartTime {
		out = append(out, "startTime")
	}
	if a.Duration != b.Duration {
		out = append(out, "duration")
	}
	if a.Frequency != b.Frequency {
		out = append(out, "frequency")
	}
	if a.Checked != b.Checked {
		out = append(out, "checked")
	}
	return out
}

// FindSessions lists every slot whose patient name matches name after normalization.
func FindSessions(data models.ScheduleData, name string) models.PatientSchedule {
	target := NormalizeName(name)
	out := models.PatientSchedule{Name: target, Sessions: make([]models.PatientSession, 0)}
	if target == "" {
		return out
	}
	for _, rec := range Flatten(data) {
		if NormalizeName(rec.Name) != target {
			continue
		}
		start := TimeToMinutes(rec.StartTime)
		dur := ParseDurationMinutes(rec.Duration)
		days := rec.SpecificDays
		if len(days) == 0 {
			days = rec.DayGroup.Weekdays()
		}
		out.Sessions = append(out.Sessions, models.PatientSession{
			Membership: models.Membership{DayGroup: rec.DayGroup, ChairNumber: rec.ChairNumber, Turn: rec.Turn},
			PatientID:  rec.ID,
			Name:       rec.Name,
			Treatment:  rec.Treatment,
			StartTime:  rec.StartTime,
			EndTime:    MinutesToTime(start + dur),
			Duration:   rec.Duration,
			Days:       days,
		})
		out.SessionsPerWeek += len(days)
		out.WeeklyMinutes += dur * len(days)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
