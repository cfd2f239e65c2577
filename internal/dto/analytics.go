package dto

import "github.com/noah-isme/hemo-scheduler-api/internal/models"

// SimulateRequest asks for ranked placements of a new session.
type SimulateRequest struct {
	DayGroup models.DayGroup `json:"dayGroup" validate:"required,oneof=SEG/QUA/SEX TER/QUI/SÁB"`
	Duration string          `json:"duration" validate:"required,max=8"`
}

// SimulateResponse lists the suggestions best first.
type SimulateResponse struct {
	DayGroup    models.DayGroup         `json:"dayGroup"`
	Duration    string                  `json:"duration"`
	Suggestions []models.SlotSuggestion `json:"suggestions"`
}

// ReportQuery overrides the configured candidate strategy for one request.
type ReportQuery struct {
	Strategy string `form:"strategy" validate:"omitempty,oneof=late_start anticipation"`
}
