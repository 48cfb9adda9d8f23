// internal/api/handler/api/runs.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/tradelens/internal/api/job"
	"github.com/newthinker/tradelens/internal/api/response"
	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/logger"
	"github.com/newthinker/tradelens/internal/snapshot"
)

const snapshotRunTimeout = 10 * time.Minute

// SnapshotRunner is the part of snapshot.Job the handler drives.
type SnapshotRunner interface {
	Run(ctx context.Context) (snapshot.Result, error)
}

// RunsHandler starts snapshot runs on demand and reports their progress.
type RunsHandler struct {
	jobs   *job.Store
	runner SnapshotRunner
	log    *zap.Logger
}

// NewRunsHandler creates a runs handler.
func NewRunsHandler(jobs *job.Store, runner SnapshotRunner, log *zap.Logger) *RunsHandler {
	return &RunsHandler{jobs: jobs, runner: runner, log: logger.OrNop(log)}
}

// Create starts a snapshot run in the background.
func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	j := h.jobs.Create("snapshot")
	go h.run(j.ID)

	response.JSON(w, http.StatusAccepted, runView(j))
}

// runView renders a job with its error flattened to code and message.
func runView(j job.Job) map[string]any {
	resp := map[string]any{
		"job_id":     j.ID,
		"status":     j.Status,
		"created_at": j.CreatedAt,
		"updated_at": j.UpdatedAt,
	}
	if j.Done() {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		detail := map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
		if j.Error.Cause != nil {
			detail["cause"] = j.Error.Cause.Error()
		}
		resp["error"] = detail
	}
	return resp
}

func (h *RunsHandler) run(jobID string) {
	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	// Detached from the request, which ends with the 202.
	ctx, cancel := context.WithTimeout(context.Background(), snapshotRunTimeout)
	defer cancel()
	result, err := h.runner.Run(ctx)

	h.jobs.Update(jobID, func(j *job.Job) {
		j.Result = result
		if err != nil {
			j.Status = job.StatusFailed
			var coreErr *core.Error
			if !errors.As(err, &coreErr) {
				coreErr = core.WrapError(core.ErrSnapshotFailed, err)
			}
			j.Error = coreErr
			return
		}
		j.Status = job.StatusComplete
	})
	if err != nil {
		h.log.Warn("on-demand snapshot run failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

// Get returns one run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, runView(j))
}

// List returns recent runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs.List()
	views := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, runView(j))
	}
	response.List(w, views)
}
