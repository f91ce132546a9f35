package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge is the task type for purging expired sessions.
	TaskSessionPurge = "session:purge_expired"
)

// SessionPurgePayload configures the session purge task.
type SessionPurgePayload struct {
	// Grace keeps expired rows around for this many extra minutes so
	// recently-expired tokens can still be distinguished from unknown ones.
	GraceMinutes int `json:"grace_minutes"`
}

// NewSessionPurgeTask constructs an Asynq task.
func NewSessionPurgeTask(graceMinutes int) (*asynq.Task, error) {
	data, err := json.Marshal(SessionPurgePayload{GraceMinutes: graceMinutes})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, data), nil
}
