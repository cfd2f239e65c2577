package engine

import (
	"errors"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// ErrDataProtected vetoes replacing a populated snapshot with an empty one.
var ErrDataProtected = errors.New("data protection active: the store holds records and cannot be emptied automatically")

// SnapshotSummary describes a stored or candidate snapshot.
type SnapshotSummary struct {
	// Present is false when nothing is stored yet.
	Present bool
	// Corrupt marks a stored payload that could not be decoded.
	Corrupt     bool
	RecordCount int
}

// Summarize describes data as a present, decodable snapshot.
func Summarize(data models.ScheduleData) SnapshotSummary {
	return SnapshotSummary{Present: true, RecordCount: CountRecords(data)}
}

// SavePolicy decides whether a write may replace the stored snapshot.
type SavePolicy struct{}

// Evaluate denies writing an empty snapshot over a populated one unless
// allowEmpty is set. A corrupt stored copy never blocks the write.
func (SavePolicy) Evaluate(prev, next SnapshotSummary, allowEmpty bool) error {
	if allowEmpty || !prev.Present || prev.Corrupt {
		return nil
	}
	if prev.RecordCount > 0 && next.RecordCount == 0 {
		return ErrDataProtected
	}
	return nil
}
