package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Job is one scheduled snapshot refresh
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run refreshes the snapshot and reports what it touched. Counts are
	// meaningful even when err is set: a partial refresh is still stored.
	Run(ctx context.Context) (RefreshCounts, error)

	// Schedule returns a six-field cron expression (with seconds)
	// or a descriptor such as "@daily"
	Schedule() string
}

// Planner is implemented by jobs that can size their next run
// without fetching anything
type Planner interface {
	Plan(ctx context.Context) (RefreshCounts, error)
}

// RefreshCounts tallies one refresh run
type RefreshCounts struct {
	Unit      string `json:"unit"` // month, quote, code
	Requested int    `json:"requested"`
	Fetched   int    `json:"fetched"`
	Failed    int    `json:"failed"`
	// NotFound counts max cost pages looked up without a figure
	NotFound int `json:"not_found,omitempty"`
}

// String renders e.g. "11/12 months fetched, 1 failed"
func (c RefreshCounts) String() string {
	if c.Unit == "" {
		return "-"
	}
	if c.Requested == 0 {
		return fmt.Sprintf("no %ss to refresh", c.Unit)
	}

	parts := []string{fmt.Sprintf("%d/%d %ss fetched", c.Fetched, c.Requested, c.Unit)}
	if c.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", c.Failed))
	}
	if c.NotFound > 0 {
		parts = append(parts, fmt.Sprintf("%d not found", c.NotFound))
	}
	return strings.Join(parts, ", ")
}

// JobResult is one execution of a job including its retries
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	// Counts of the last attempt
	Counts RefreshCounts `json:"counts"`
}

const historyLimit = 100

// JobHistory keeps the latest results of one job
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest past historyLimit
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Latest returns the newest result
func (h *JobHistory) Latest() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// FailureCount returns how many kept results failed
func (h *JobHistory) FailureCount() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate returns the share of successful results (0.0 - 1.0)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	return float64(len(h.Results)-h.FailureCount()) / float64(len(h.Results))
}
