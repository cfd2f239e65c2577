package models

// ImportTable is a parsed spreadsheet: headers in column order and one map per row.
// Row values are strings, or float64 for numeric spreadsheet cells.
type ImportTable struct {
	Headers []string                 `json:"headers"`
	Rows    []map[string]interface{} `json:"rows"`
}

// ImportSkip explains why a row or placement was not applied. Skips are logged, not returned to clients.
type ImportSkip struct {
	Row    int    `json:"row"`
	Name   string `json:"name,omitempty"`
	Chair  string `json:"chair,omitempty"`
	Reason string `json:"reason"`
}

// ImportColumns records which header was matched for each field.
type ImportColumns struct {
	Name      string `json:"name"`
	Chair     string `json:"chair,omitempty"`
	Time      string `json:"time,omitempty"`
	Days      string `json:"days,omitempty"`
	Treatment string `json:"treatment,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

// ImportSummary describes the outcome of a bulk import.
type ImportSummary struct {
	ProcessedRows     int           `json:"processedRows"`
	Inserted          int           `json:"inserted"`
	Updated           int           `json:"updated"`
	SkippedPlacements int           `json:"skippedPlacements"`
	Columns           ImportColumns `json:"columns"`
	Version           int64         `json:"version"`
}
