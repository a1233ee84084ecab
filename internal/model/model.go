package model

import "time"

// Upload is a file received on /upload.
type Upload struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Filepath  string    `json:"filepath"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Report is a generated report saved to disk.
type Report struct {
	ID        string    `json:"id"`
	UploadID  string    `json:"upload_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Filepath  string    `json:"-"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

type EmailStatus string

const (
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// EmailLog records one delivery attempt of a report.
type EmailLog struct {
	ID        string      `json:"id"`
	ReportID  string      `json:"report_id"`
	Recipient string      `json:"recipient"`
	Status    EmailStatus `json:"status"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
