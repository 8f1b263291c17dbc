package handlers

import (
	"net/http"
	"sort"

	"github.com/wonny/yuutai/internal/scheduler"
	"github.com/wonny/yuutai/pkg/logger"
)

// JobStatsSource reports the refresh jobs of a running scheduler
type JobStatsSource interface {
	GetJobStats() map[string]scheduler.JobStats
}

// JobsHandler serves refresh job status when the scheduler runs in-process
type JobsHandler struct {
	source JobStatsSource
	logger *logger.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(source JobStatsSource, log *logger.Logger) *JobsHandler {
	return &JobsHandler{source: source, logger: log}
}

// GetJobs returns every job with its last refresh counts
// GET /api/jobs
func (h *JobsHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	stats := h.source.GetJobStats()

	jobs := make([]scheduler.JobStats, 0, len(stats))
	for _, st := range stats {
		jobs = append(jobs, st)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].JobName < jobs[j].JobName })

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(jobs),
		"data":  jobs,
	})
}
