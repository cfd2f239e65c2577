package models

import "time"

// CapacityReport sums installed, effective and used capacity.
type CapacityReport struct {
	Chairs             int     `json:"chairs"`
	TurnsPerDay        int     `json:"turnsPerDay"`
	DayGroups          int     `json:"dayGroups"`
	InstalledCapacity  int     `json:"installedCapacity"`
	EffectiveRatio     float64 `json:"effectiveRatio"`
	EffectiveCapacity  int     `json:"effectiveCapacity"`
	RealCapacity       int     `json:"realCapacity"`
	UniquePatients     int     `json:"uniquePatients"`
	AbsorbableCapacity int     `json:"absorbableCapacity"`
	EfficiencyRate     float64 `json:"efficiencyRate"`
	OccupancyRate      float64 `json:"occupancyRate"`
}

// Gap is a free interval on one chair long enough for a standard session.
type Gap struct {
	DayGroup              DayGroup `json:"dayGroup"`
	ChairNumber           string   `json:"chairNumber"`
	StartTime             string   `json:"startTime"`
	EndTime               string   `json:"endTime"`
	DurationMinutes       int      `json:"durationMinutes"`
	CanFitStandardSession bool     `json:"canFitStandardSession"`
}

// CandidateKind names the heuristic that produced an optimization candidate.
type CandidateKind string

const (
	CandidateLateStart    CandidateKind = "LATE_START"
	CandidateAnticipation CandidateKind = "ANTICIPATION"
)

// Urgency of a suggestion.
type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

// OptimizationCandidate is a patient whose start time could move earlier.
type OptimizationCandidate struct {
	Kind           CandidateKind `json:"kind"`
	PatientID      string        `json:"patientId"`
	PatientName    string        `json:"patientName"`
	ChairNumber    string        `json:"chairNumber"`
	Turn           int           `json:"turn"`
	DayGroup       DayGroup      `json:"dayGroup"`
	CurrentStart   string        `json:"currentStart"`
	SuggestedStart string        `json:"suggestedStart"`
	ImpactMinutes  int           `json:"impactMinutes"`
	Impact         string        `json:"impact"`
	Urgency        Urgency       `json:"urgency"`
}

// OperationalReport is the full capacity analysis of a snapshot.
type OperationalReport struct {
	Version     int64                   `json:"version"`
	Strategy    string                  `json:"strategy"`
	Capacity    CapacityReport          `json:"capacity"`
	Gaps        []Gap                   `json:"gaps"`
	Candidates  []OptimizationCandidate `json:"candidates"`
	GeneratedAt time.Time               `json:"generatedAt"`
}

// Stats are the headline counters of a snapshot.
type Stats struct {
	TotalSlots     int     `json:"totalSlots"`
	UniquePatients int     `json:"uniquePatients"`
	HDCount        int     `json:"hdCount"`
	HDFCount       int     `json:"hdfCount"`
	HDPercent      float64 `json:"hdPercent"`
	HDFPercent     float64 `json:"hdfPercent"`
	Turn1Count     int     `json:"turn1Count"`
	Turn2Count     int     `json:"turn2Count"`
	Turn3Count     int     `json:"turn3Count"`
}

// SlotSuggestion is a ranked placement option from the simulator.
type SlotSuggestion struct {
	DayGroup    DayGroup `json:"dayGroup"`
	ChairNumber string   `json:"chairNumber"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	FreeUntil   string   `json:"freeUntil"`
	Turn        int      `json:"turn"`
	Score       int      `json:"score"`
	Quality     string   `json:"quality"`
}

// SystemMetrics is a lightweight view of process counters for the admin dashboard.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	SavesTotal               uint64    `json:"savesTotal"`
	SavesProtected           uint64    `json:"savesProtected"`
	SavesFailed              uint64    `json:"savesFailed"`
	OccupiedSlots            int       `json:"occupiedSlots"`
	UniquePatients           int       `json:"uniquePatients"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
