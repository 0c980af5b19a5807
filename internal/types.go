package internal

import "time"

// Pipeline run kinds.
const (
	RunDesign = "design"
	RunLeader = "leader"
	RunCheck  = "check"
)

// Pipeline run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type PipelineRun struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Dir        string     `json:"dir"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
