package dto

import "github.com/noah-isme/hemo-scheduler-api/internal/models"

// SlotRef addresses one chair turn of a day group.
type SlotRef struct {
	DayGroup    models.DayGroup `json:"dayGroup" validate:"required,oneof=SEG/QUA/SEX TER/QUI/SÁB"`
	ChairNumber string          `json:"chairNumber" validate:"required,max=16"`
	Turn        int             `json:"turn" validate:"required,min=1,max=3"`
}

// Membership converts the reference to the model form.
func (r SlotRef) Membership() models.Membership {
	return models.Membership{DayGroup: r.DayGroup, ChairNumber: r.ChairNumber, Turn: r.Turn}
}

// PatientFields are the editable attributes of a patient.
type PatientFields struct {
	Name         string           `json:"name" validate:"required,max=120"`
	Treatment    models.Treatment `json:"treatment" validate:"required,oneof=HD HDF DP Conservador"`
	StartTime    string           `json:"startTime" validate:"required,max=8"`
	Duration     string           `json:"duration" validate:"required,max=8"`
	Frequency    models.Frequency `json:"frequency" validate:"required,oneof=2x 3x Diário Extra"`
	SpecificDays []models.Weekday `json:"specificDays" validate:"omitempty,dive,oneof=SEG TER QUA QUI SEX SÁB"`
	Checked      bool             `json:"checked"`
}

// Patient builds the model with the given id.
func (f PatientFields) Patient(id string) models.Patient {
	return models.Patient{
		ID:           id,
		Name:         f.Name,
		Treatment:    f.Treatment,
		StartTime:    f.StartTime,
		Duration:     f.Duration,
		Frequency:    f.Frequency,
		SpecificDays: append([]models.Weekday(nil), f.SpecificDays...),
		Checked:      f.Checked,
	}
}

// SavePatientRequest is the modal save. An empty ID creates a new patient.
type SavePatientRequest struct {
	ID string `json:"id" validate:"omitempty,max=64"`
	PatientFields
	Chairs   []string        `json:"chairs" validate:"required,min=1,dive,required,max=16"`
	Turn     int             `json:"turn" validate:"required,min=1,max=3"`
	DayGroup models.DayGroup `json:"dayGroup" validate:"required,oneof=SEG/QUA/SEX TER/QUI/SÁB"`
	Editing  *SlotRef        `json:"editing" validate:"omitempty"`
}

// UpdatePatientRequest patches fields on every slot the patient holds.
type UpdatePatientRequest struct {
	Name      *string           `json:"name" validate:"omitempty,min=1,max=120"`
	Treatment *models.Treatment `json:"treatment" validate:"omitempty,oneof=HD HDF DP Conservador"`
	StartTime *string           `json:"startTime" validate:"omitempty,max=8"`
	Duration  *string           `json:"duration" validate:"omitempty,max=8"`
	Frequency *models.Frequency `json:"frequency" validate:"omitempty,oneof=2x 3x Diário Extra"`
	Checked   *bool             `json:"checked"`
}

// MovePatientRequest relocates one slot.
type MovePatientRequest struct {
	From SlotRef `json:"from"`
	To   SlotRef `json:"to"`
}

// DropPatientRequest is a drag and drop onto a chair; the first free turn is used.
type DropPatientRequest struct {
	From        SlotRef `json:"from"`
	TargetChair string  `json:"targetChair" validate:"required,max=16"`
	StartTime   string  `json:"startTime" validate:"omitempty,max=8"`
}

// EnrollmentRequest writes one patient to an explicit set of slots.
type EnrollmentRequest struct {
	PatientFields
	Memberships []SlotRef `json:"memberships" validate:"required,min=1,dive"`
}

// ReplaceRecordsRequest rebuilds the schedule from flat records.
type ReplaceRecordsRequest struct {
	Records []models.FlatRecord `json:"records"`
}

// MutationResponse reports the snapshot version a write produced.
type MutationResponse struct {
	Version     int64 `json:"version"`
	RecordCount int   `json:"recordCount"`
}

// SavePatientResponse returns the stored patient with its id.
type SavePatientResponse struct {
	Patient models.Patient `json:"patient"`
	MutationResponse
}

// ScheduleResponse is the whole snapshot with its version.
type ScheduleResponse struct {
	Data    models.ScheduleData `json:"data"`
	Version int64               `json:"version"`
	Source  models.SourceTag    `json:"source"`
}
