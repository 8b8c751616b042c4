package models

import "time"

// Sync run statuses.
const (
	SyncStatusSucceeded = "succeeded"
	SyncStatusFailed    = "failed"
)

// SyncRun records one attempt of the snapshot builder.
type SyncRun struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Trigger       string    `json:"trigger" gorm:"type:varchar(32);index"` // e.g. "manual", "stale", "cold-start", "schedule", "event"
	Status        string    `json:"status" gorm:"type:varchar(16);index"`
	TotalProducts int       `json:"total_products"`
	DurationMs    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty" gorm:"type:text"`
	StartedAt     time.Time `json:"started_at" gorm:"index"`
	FinishedAt    time.Time `json:"finished_at"`
}
