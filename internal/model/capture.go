package model

import "time"

// Upload lifecycle states for a capture.
const (
	UploadPending  = "pending"
	UploadUploaded = "uploaded"
	UploadFailed   = "failed"
)

type Capture struct {
	ID             int64
	Filename       string
	SizeBytes      int64
	SHA256         string
	Source         string
	TakenAt        time.Time
	UploadStatus   string
	UploadAttempts int
	UploadedAt     *time.Time
	LastError      *string
	Notified       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
