package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionPurgeJob deletes expired rows from the session registry so the
// table stays bounded by the token TTL.
type SessionPurgeJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSessionPurgeJob constructs the job.
func NewSessionPurgeJob(pool *pgxpool.Pool, logger *slog.Logger) *SessionPurgeJob {
	return &SessionPurgeJob{pool: pool, logger: logger}
}

// Handle processes one purge task.
func (j *SessionPurgeJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload SessionPurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	cutoff := time.Now().UTC().Add(-time.Duration(payload.GraceMinutes) * time.Minute)
	tag, err := j.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("purged expired sessions",
			slog.Int64("deleted", tag.RowsAffected()),
			slog.Time("cutoff", cutoff))
	}
	return nil
}
