package jobs

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusDownloaded Status = "downloaded"
)

// Job is one extraction request and its tracked lifecycle state.
// ArtifactPath is a server-side file reference and never serialized
// to API clients.
type Job struct {
	ID           string    `json:"task_id"`
	URL          string    `json:"url"`
	Status       Status    `json:"status"`
	Progress     float64   `json:"progress"`
	CreatedAt    time.Time `json:"created_at"`
	Title        string    `json:"title,omitempty"`
	Error        string    `json:"error,omitempty"`
	ArtifactPath string    `json:"-"`
}
