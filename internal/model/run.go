package model

import "time"

// RunStatus represents the state of one pipeline run over a prospect list.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusComplete  RunStatus = "complete"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of the pipeline over an input file.
type Run struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	DryRun     bool       `json:"dry_run"`
	Status     RunStatus  `json:"status"`
	Total      int        `json:"total"`
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunTotals are the counters written when a run finishes.
type RunTotals struct {
	Status     RunStatus `json:"status"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
}

// StoredResult is a ProcessingResult as persisted for a run.
type StoredResult struct {
	ID        string            `json:"id"`
	RunID     string            `json:"run_id"`
	Email     string            `json:"email"`
	Company   string            `json:"company"`
	Success   bool              `json:"success"`
	Result    *ProcessingResult `json:"result"`
	CreatedAt time.Time         `json:"created_at"`
}

// Totals counts the outcomes in results under status.
func Totals(status RunStatus, results []*ProcessingResult) RunTotals {
	t := RunTotals{Status: status, Total: len(results)}
	for _, r := range results {
		if r.Success {
			t.Successful++
		} else {
			t.Failed++
		}
	}
	return t
}
