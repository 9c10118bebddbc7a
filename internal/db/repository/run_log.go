package repository

import (
	"context"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunLogRepository appends execution and error entries. Both tables are append-only.
type RunLogRepository interface {
	AppendExecution(ctx context.Context, entry *models.ExecutionLog) error
	AppendError(ctx context.Context, entry *models.ErrorLog) error

	// LatestExecution returns the most recent execution entry.
	LatestExecution(ctx context.Context) (*models.ExecutionLog, error)
}

type runLogRepository struct {
	pool *pgxpool.Pool
}

// NewRunLogRepository creates a new RunLogRepository.
func NewRunLogRepository(pool *pgxpool.Pool) RunLogRepository {
	return &runLogRepository{pool: pool}
}

func (r *runLogRepository) AppendExecution(ctx context.Context, entry *models.ExecutionLog) error {
	query := `
		INSERT INTO execution_logs (id, run_id, video_count, quota_used)
		VALUES ($1, $2, $3, $4)
		RETURNING logged_at
	`
	err := r.pool.QueryRow(ctx, query, entry.ID, entry.RunID, entry.VideoCount, entry.QuotaUsed).Scan(&entry.LoggedAt)
	if err != nil {
		return db.WrapError(err, "append execution log")
	}
	return nil
}

func (r *runLogRepository) AppendError(ctx context.Context, entry *models.ErrorLog) error {
	query := `
		INSERT INTO error_logs (id, run_id, message, stack_trace)
		VALUES ($1, $2, $3, $4)
		RETURNING logged_at
	`
	err := r.pool.QueryRow(ctx, query, entry.ID, entry.RunID, entry.Message, entry.StackTrace).Scan(&entry.LoggedAt)
	if err != nil {
		return db.WrapError(err, "append error log")
	}
	return nil
}

func (r *runLogRepository) LatestExecution(ctx context.Context) (*models.ExecutionLog, error) {
	query := `
		SELECT id, run_id, video_count, quota_used, logged_at
		FROM execution_logs
		ORDER BY logged_at DESC
		LIMIT 1
	`
	entry := &models.ExecutionLog{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&entry.ID,
		&entry.RunID,
		&entry.VideoCount,
		&entry.QuotaUsed,
		&entry.LoggedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get latest execution log")
	}
	return entry, nil
}
