package model

import "time"

// RunStatus is the terminal state of a backup run
type RunStatus string

const (
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// BackupRun records the outcome of one backup invocation
type BackupRun struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	BackupDir   string    `json:"backup_dir"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Total       int       `json:"total"`
	Cloned      int       `json:"cloned"`
	Failed      int       `json:"failed"`
	FailedRepos []string  `json:"failed_repos,omitempty"`
	Status      RunStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
}

// Duration returns how long the run took
func (r BackupRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}

	return r.FinishedAt.Sub(r.StartedAt)
}
