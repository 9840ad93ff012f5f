package roundqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	"github.com/trycohn/1337-sub004/internal/eventbus"
	"github.com/trycohn/1337-sub004/internal/observability"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
	"github.com/trycohn/1337-sub004/internal/utils"
)

// QueueService schedules delayed reminder jobs for rounds stuck before
// approval.
type QueueService interface {
	// ScheduleApprovalReminder schedules a reminder at remindAt if the round
	// is still in the given status by then.
	ScheduleApprovalReminder(ctx context.Context, tournamentID uuid.UUID, round int, remindAt time.Time, status roundtypes.Status) error
	// CancelTournamentJobs cancels all pending reminder jobs of a tournament.
	CancelTournamentJobs(ctx context.Context, tournamentID uuid.UUID) error
	// HealthCheck verifies the queue service is healthy.
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService.
var _ QueueService = (*Service)(nil)

// Service handles job scheduling for the round module using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics observability.Metrics
}

// NewService creates a new River-based queue service. River needs its own
// pgx pool; the bun DB is used only for job introspection queries.
func NewService(
	ctx context.Context,
	bunDB *bun.DB,
	logger *slog.Logger,
	dsn string,
	metrics observability.Metrics,
	repo rounddb.Repository,
	eventBus eventbus.EventBus,
	helpers utils.Helpers,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
	)

	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewApprovalReminderWorker(ctxLogger, bunDB, repo, eventBus, helpers))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	ctxLogger.InfoContext(ctx, "Round queue service initialized")

	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Round queue service started")
	return nil
}

// Stop stops the River client and releases its pool.
func (s *Service) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.logger.InfoContext(ctx, "Round queue service stopped")
	return nil
}

// ScheduleApprovalReminder schedules a reminder job. Reminders already in
// the past are skipped, not failed.
func (s *Service) ScheduleApprovalReminder(ctx context.Context, tournamentID uuid.UUID, round int, remindAt time.Time, status roundtypes.Status) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_approval_reminder", "river")

	ctxLogger := s.logger.With(
		attr.TournamentID(tournamentID),
		attr.RoundNumber(round),
		attr.Time("remind_at", remindAt),
	)

	now := time.Now()
	if remindAt.Before(now.Add(5 * time.Second)) {
		ctxLogger.InfoContext(ctx, "Reminder time is in the past or too close, skipping")
		s.metrics.RecordOperationSuccess(ctx, "schedule_approval_reminder", "river")
		return nil
	}

	job := ApprovalReminderJob{
		TournamentID: tournamentID,
		Round:        round,
		Status:       status,
	}

	jobResult, err := s.client.Insert(ctx, job, &river.InsertOpts{
		ScheduledAt: remindAt,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		ctxLogger.ErrorContext(ctx, "Failed to schedule approval reminder", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_approval_reminder", "river")
		return fmt.Errorf("failed to schedule approval reminder: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_approval_reminder", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_approval_reminder", "river", time.Since(start))

	ctxLogger.InfoContext(ctx, "Approval reminder scheduled",
		attr.Duration("delay", remindAt.Sub(now)),
		attr.Int64("job_id", jobResult.Job.ID),
	)
	return nil
}

// CancelTournamentJobs cancels pending reminder jobs for a tournament, e.g.
// when it finishes early.
func (s *Service) CancelTournamentJobs(ctx context.Context, tournamentID uuid.UUID) error {
	s.metrics.RecordOperationAttempt(ctx, "cancel_tournament_jobs", "river")

	type riverJobRow struct {
		ID int64 `bun:"id"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id").
		Where("kind = ?", ApprovalReminderJob{}.Kind()).
		Where("state IN (?, ?)", "available", "scheduled").
		Where("args->>'tournament_id' = ?", tournamentID.String()).
		Scan(ctx, &jobs)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "cancel_tournament_jobs", "river")
		return fmt.Errorf("failed to query jobs for cancellation: %w", err)
	}

	for _, job := range jobs {
		if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
			s.metrics.RecordOperationFailure(ctx, "cancel_tournament_jobs", "river")
			return fmt.Errorf("failed to cancel job %d: %w", job.ID, err)
		}
	}

	s.metrics.RecordOperationSuccess(ctx, "cancel_tournament_jobs", "river")
	s.logger.InfoContext(ctx, "Cancelled pending reminder jobs",
		attr.TournamentID(tournamentID),
		attr.Int("count", len(jobs)),
	)
	return nil
}

// HealthCheck pings the underlying pool.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue database unreachable: %w", err)
	}
	return nil
}
