package model

import "time"

// Status is the three-state checklist item status. Every transition
// between the three states is permitted; there is no terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusBug      Status = "bug"
	StatusResolved Status = "resolved"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusBug, StatusResolved:
		return true
	}
	return false
}

type ChecklistItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChecklistSection struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Items []ChecklistItem `json:"items"`
}

// FlatItem is one checklist item with its section context, as served by
// the filtered dashboard view.
type FlatItem struct {
	SectionID    string        `json:"sectionId"`
	SectionTitle string        `json:"sectionTitle"`
	Item         ChecklistItem `json:"item"`
}

// Counters summarizes the whole checklist for the dashboard header.
type Counters struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Bug         int `json:"bug"`
	Resolved    int `json:"resolved"`
	ResolvedPct int `json:"resolvedPct"`
}

// Backup statuses mirror the lifecycle of one snapshot upload.
const (
	BackupStatusPending   = "pending"
	BackupStatusUploading = "uploading"
	BackupStatusCompleted = "completed"
	BackupStatusFailed    = "failed"
)

// Backup is one recorded snapshot of the tracker database.
type Backup struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	S3Key     string    `json:"s3Key"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}
