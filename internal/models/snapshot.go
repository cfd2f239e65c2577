package models

import "time"

// SourceTag says where a loaded snapshot came from.
type SourceTag string

const (
	SourceMaster          SourceTag = "MASTER"
	SourceMirror          SourceTag = "MIRROR"
	SourceLegacyMigration SourceTag = "LEGACY_MIGRATION"
	SourceEmpty           SourceTag = "EMPTY"
)

// SnapshotMeta is stored beside the snapshot copies.
type SnapshotMeta struct {
	LastSaved   time.Time `json:"lastSaved"`
	RecordCount int       `json:"recordCount"`
	Version     int64     `json:"version"`
	Format      string    `json:"format"`
}

// SaveStatus of the autosave loop.
type SaveStatus string

const (
	SaveIdle      SaveStatus = "idle"
	SaveSaving    SaveStatus = "saving"
	SaveSaved     SaveStatus = "saved"
	SaveError     SaveStatus = "error"
	SaveProtected SaveStatus = "protected"
)

// PersistenceStatus is exposed to clients polling the save indicator.
type PersistenceStatus struct {
	Status       SaveStatus `json:"status"`
	Source       SourceTag  `json:"source"`
	Version      int64      `json:"version"`
	SavedVersion int64      `json:"savedVersion"`
	LastSavedAt  *time.Time `json:"lastSavedAt,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
	RecordCount  int        `json:"recordCount"`
}

// BackupObject is an off-site snapshot copy.
type BackupObject struct {
	Key          string     `json:"key"`
	Size         int64      `json:"size"`
	LastModified time.Time  `json:"lastModified"`
	DownloadURL  string     `json:"downloadUrl,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// SnapshotRecord is one stored slot of the snapshot table.
type SnapshotRecord struct {
	SlotKey   string    `db:"slot_key"`
	Payload   string    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}
