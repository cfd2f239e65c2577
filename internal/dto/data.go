package dto

import "github.com/noah-isme/hemo-scheduler-api/internal/models"

// ImportRequest carries spreadsheet rows already parsed by the client.
type ImportRequest struct {
	DayGroup models.DayGroup          `json:"dayGroup" validate:"required,oneof=SEG/QUA/SEX TER/QUI/SÁB"`
	Headers  []string                 `json:"headers"`
	Rows     []map[string]interface{} `json:"rows" validate:"required,min=1"`
}

// Table converts the request to the resolver input.
func (r ImportRequest) Table() models.ImportTable {
	return models.ImportTable{Headers: r.Headers, Rows: r.Rows}
}

// ExportQuery selects the format and rotation of an export.
type ExportQuery struct {
	Format   string `form:"format" validate:"omitempty,oneof=csv pdf"`
	DayGroup string `form:"dayGroup"`
}

// ReloadResponse reports what a forced reload found.
type ReloadResponse struct {
	Source      models.SourceTag `json:"source"`
	RecordCount int              `json:"recordCount"`
	Version     int64            `json:"version"`
}

// RestoreResponse reports the snapshot installed from a backup file.
type RestoreResponse struct {
	RecordCount int   `json:"recordCount"`
	Version     int64 `json:"version"`
}

// BackupListResponse lists stored off-site copies.
type BackupListResponse struct {
	Backups []models.BackupObject `json:"backups"`
}

// TokenRequest describes an access token minted by the CLI.
type TokenRequest struct {
	UserID string      `validate:"required,max=64"`
	Name   string      `validate:"omitempty,max=120"`
	Role   models.Role `validate:"required,oneof=ADMIN STAFF"`
}

// TokenResponse is an issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
}
