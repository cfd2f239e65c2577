package models

// CellKind classifies an occupied grid position.
type CellKind string

const (
	CellPatient        CellKind = "patient"
	CellBlockedPatient CellKind = "blocked_patient"
	CellSetup          CellKind = "setup"
	CellBlockedSetup   CellKind = "blocked_setup"
)

// Cell is one 30-minute grid position of a chair. Empty positions are absent from the map.
type Cell struct {
	Kind      CellKind `json:"kind"`
	PatientID string   `json:"patientId,omitempty"`
	Name      string   `json:"name,omitempty"`
	Treatment string   `json:"treatment,omitempty"`
	Turn      int      `json:"turn,omitempty"`
	// Span is the number of grid rows a patient or setup start cell covers.
	Span int `json:"span,omitempty"`
}

// ChairColumn is the sparse layout of one chair keyed by minute-of-day.
type ChairColumn struct {
	ChairNumber string       `json:"chairNumber"`
	Cells       map[int]Cell `json:"cells"`
}

// OccupancyMatrix is the visual grid of one rotation.
type OccupancyMatrix struct {
	DayGroup DayGroup      `json:"dayGroup"`
	Slots    []string      `json:"slots"`
	Chairs   []ChairColumn `json:"chairs"`
}
