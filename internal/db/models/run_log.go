package models

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionLog is the append-only record written by every run that reaches the logging step.
type ExecutionLog struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RunID      uuid.UUID `db:"run_id" json:"runId"`
	VideoCount int       `db:"video_count" json:"videoCount"`
	QuotaUsed  int       `db:"quota_used" json:"quotaUsed"`
	LoggedAt   time.Time `db:"logged_at" json:"date"`
}

// NewExecutionLog creates an ExecutionLog for the given run.
func NewExecutionLog(runID uuid.UUID, videoCount, quotaUsed int) *ExecutionLog {
	return &ExecutionLog{
		ID:         uuid.New(),
		RunID:      runID,
		VideoCount: videoCount,
		QuotaUsed:  quotaUsed,
	}
}

// ErrorLog is the append-only record written by every run that fails.
type ErrorLog struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RunID      uuid.UUID `db:"run_id" json:"runId"`
	Message    string    `db:"message" json:"message"`
	StackTrace string    `db:"stack_trace" json:"stack"`
	LoggedAt   time.Time `db:"logged_at" json:"timestamp"`
}

// NewErrorLog creates an ErrorLog for the given run.
func NewErrorLog(runID uuid.UUID, message, stackTrace string) *ErrorLog {
	return &ErrorLog{
		ID:         uuid.New(),
		RunID:      runID,
		Message:    message,
		StackTrace: stackTrace,
	}
}
