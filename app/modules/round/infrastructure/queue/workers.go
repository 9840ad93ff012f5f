package roundqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
	"github.com/uptrace/bun"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	"github.com/trycohn/1337-sub004/internal/eventbus"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
	"github.com/trycohn/1337-sub004/internal/utils"
)

// ApprovalReminderWorker fires the reminder event when its job comes due.
type ApprovalReminderWorker struct {
	river.WorkerDefaults[ApprovalReminderJob]
	logger   *slog.Logger
	db       *bun.DB
	repo     rounddb.Repository
	eventBus eventbus.EventBus
	helpers  utils.Helpers
}

// NewApprovalReminderWorker creates a new ApprovalReminderWorker.
func NewApprovalReminderWorker(logger *slog.Logger, db *bun.DB, repo rounddb.Repository, eventBus eventbus.EventBus, helpers utils.Helpers) *ApprovalReminderWorker {
	return &ApprovalReminderWorker{
		logger:   logger,
		db:       db,
		repo:     repo,
		eventBus: eventBus,
		helpers:  helpers,
	}
}

// Work publishes the approval reminder unless the round has moved on since
// the job was scheduled.
func (w *ApprovalReminderWorker) Work(ctx context.Context, job *river.Job[ApprovalReminderJob]) error {
	args := job.Args

	round, err := w.repo.GetRound(ctx, w.db, args.TournamentID, args.Round)
	if err != nil {
		return fmt.Errorf("failed to load round for reminder: %w", err)
	}
	if round.Status != args.Status {
		w.logger.InfoContext(ctx, "Round advanced before reminder fired, skipping",
			attr.TournamentID(args.TournamentID),
			attr.RoundNumber(args.Round),
			attr.String("scheduled_status", string(args.Status)),
			attr.String("current_status", string(round.Status)),
		)
		return nil
	}

	msg, err := w.helpers.CreateNewMessage(roundevents.ApprovalReminderPayloadV1{
		TournamentID: args.TournamentID,
		Round:        args.Round,
		Status:       args.Status,
	}, roundevents.ApprovalReminderV1)
	if err != nil {
		return fmt.Errorf("failed to create reminder message: %w", err)
	}

	if err := w.eventBus.Publish(roundevents.ApprovalReminderV1, msg); err != nil {
		return fmt.Errorf("failed to publish reminder: %w", err)
	}

	w.logger.InfoContext(ctx, "Approval reminder published",
		attr.TournamentID(args.TournamentID),
		attr.RoundNumber(args.Round),
		attr.String("status", string(args.Status)),
	)
	return nil
}
