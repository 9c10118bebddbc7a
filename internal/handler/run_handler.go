package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/models"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/ingest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Runner executes one ingestion run.
type Runner interface {
	Run(ctx context.Context) ingest.Result
}

// ExecutionReader reads the run log.
type ExecutionReader interface {
	LatestExecution(ctx context.Context) (*models.ExecutionLog, error)
}

// RunResponse is the JSON view of an ingest.Result.
type RunResponse struct {
	RunID      string    `json:"runId"`
	Status     string    `json:"status"`
	VideoCount int       `json:"videoCount"`
	QuotaUsed  int       `json:"quotaUsed"`
	QuotaSpent int       `json:"quotaSpent"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Error      string    `json:"error,omitempty"`
}

// RunHandler triggers runs over HTTP, one at a time.
type RunHandler struct {
	runner     Runner
	executions ExecutionReader
	logger     *zap.Logger
	running    sync.Mutex
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runner Runner, executions ExecutionReader, logger *zap.Logger) *RunHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunHandler{
		runner:     runner,
		executions: executions,
		logger:     logger,
	}
}

// TriggerRun runs ingestion synchronously and answers with its result.
// A second trigger while a run is in progress gets 409.
func (h *RunHandler) TriggerRun(c *gin.Context) {
	if !h.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "an ingestion run is already in progress"})
		return
	}
	defer h.running.Unlock()

	// A disconnecting scheduler must not abort a run halfway through the watch-list.
	result := h.runner.Run(context.WithoutCancel(c.Request.Context()))

	h.logger.Info("triggered run finished",
		zap.String("run_id", result.RunID.String()),
		zap.String("status", string(result.Status)),
		zap.Duration("duration", result.Duration()),
	)

	code := http.StatusOK
	if result.Failed() {
		code = http.StatusInternalServerError
	}
	c.JSON(code, toRunResponse(result))
}

// LatestExecution returns the most recent execution-log entry.
func (h *RunHandler) LatestExecution(c *gin.Context) {
	entry, err := h.executions.LatestExecution(c.Request.Context())
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no execution logged yet"})
			return
		}
		h.logger.Error("failed to read execution log", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read execution log"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func toRunResponse(result ingest.Result) RunResponse {
	resp := RunResponse{
		RunID:      result.RunID.String(),
		Status:     string(result.Status),
		VideoCount: result.VideoCount,
		QuotaUsed:  result.QuotaUsed,
		QuotaSpent: result.QuotaSpent,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	return resp
}
