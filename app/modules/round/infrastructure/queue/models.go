package roundqueue

import (
	"github.com/google/uuid"

	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
)

// ApprovalReminderJob nudges admins about a round that has been sitting in a
// pre-approval status for too long. The worker publishes the reminder event
// only if the round is still in the status recorded at scheduling time.
type ApprovalReminderJob struct {
	TournamentID uuid.UUID         `json:"tournament_id"`
	Round        int               `json:"round"`
	Status       roundtypes.Status `json:"status"`
}

// Kind returns the job type identifier for River.
func (ApprovalReminderJob) Kind() string { return "round_approval_reminder" }

// JobInfo represents information about a scheduled job (for debugging and
// monitoring).
type JobInfo struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	TournamentID string `json:"tournament_id"`
	State        string `json:"state"`
	ScheduledAt  string `json:"scheduled_at"`
	Attempt      int    `json:"attempt"`
	MaxAttempts  int    `json:"max_attempts"`
}
