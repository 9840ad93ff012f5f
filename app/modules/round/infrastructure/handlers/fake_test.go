package roundhandlers

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	roundservice "github.com/trycohn/1337-sub004/app/modules/round/application"
	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	"github.com/trycohn/1337-sub004/internal/observability"
	"github.com/trycohn/1337-sub004/internal/results"
	"github.com/trycohn/1337-sub004/internal/utils"
)

// FakeRoundService provides a programmable stub for the roundservice.Service
// interface. Defaults succeed, echoing the request back.
type FakeRoundService struct {
	GenerateDraftFunc     func(ctx context.Context, payload roundevents.DraftRequestedPayloadV1) (roundservice.DraftResult, error)
	ApproveTeamsFunc      func(ctx context.Context, payload roundevents.ApprovalRequestedPayloadV1) (roundservice.TeamsResult, error)
	GeneratePairingFunc   func(ctx context.Context, payload roundevents.PairingRequestedPayloadV1) (roundservice.PairingResult, error)
	ApproveMatchesFunc    func(ctx context.Context, payload roundevents.ApprovalRequestedPayloadV1) (roundservice.MatchesResult, error)
	ReportMatchResultFunc func(ctx context.Context, payload roundevents.MatchResultReportedPayloadV1) (roundservice.ResultResult, error)
	CompleteRoundFunc     func(ctx context.Context, payload roundevents.CompletionRequestedPayloadV1) (roundservice.CompletionResult, error)
	ImportResultsFunc     func(ctx context.Context, payload roundevents.ResultsImportRequestedPayloadV1) (roundservice.ImportResult, error)
	GetRoundSnapshotFunc  func(ctx context.Context, tournamentID uuid.UUID, number int) (*roundtypes.Snapshot, error)
}

func (f *FakeRoundService) GenerateDraft(ctx context.Context, payload roundevents.DraftRequestedPayloadV1) (roundservice.DraftResult, error) {
	if f.GenerateDraftFunc != nil {
		return f.GenerateDraftFunc(ctx, payload)
	}
	return results.Ok[roundevents.DraftRegeneratedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.DraftRegeneratedPayloadV1{
		TournamentID: payload.TournamentID,
		Round:        payload.Round,
	}), nil
}

func (f *FakeRoundService) ApproveTeams(ctx context.Context, payload roundevents.ApprovalRequestedPayloadV1) (roundservice.TeamsResult, error) {
	if f.ApproveTeamsFunc != nil {
		return f.ApproveTeamsFunc(ctx, payload)
	}
	return results.Ok[roundevents.RostersConfirmedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.RostersConfirmedPayloadV1{
		TournamentID: payload.TournamentID,
		Round:        payload.Round,
	}), nil
}

func (f *FakeRoundService) GeneratePairing(ctx context.Context, payload roundevents.PairingRequestedPayloadV1) (roundservice.PairingResult, error) {
	if f.GeneratePairingFunc != nil {
		return f.GeneratePairingFunc(ctx, payload)
	}
	return results.Ok[roundevents.PairingGeneratedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.PairingGeneratedPayloadV1{
		TournamentID: payload.TournamentID,
		Round:        payload.Round,
	}), nil
}

func (f *FakeRoundService) ApproveMatches(ctx context.Context, payload roundevents.ApprovalRequestedPayloadV1) (roundservice.MatchesResult, error) {
	if f.ApproveMatchesFunc != nil {
		return f.ApproveMatchesFunc(ctx, payload)
	}
	return results.Ok[roundevents.MatchesConfirmedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.MatchesConfirmedPayloadV1{
		TournamentID: payload.TournamentID,
		Round:        payload.Round,
	}), nil
}

func (f *FakeRoundService) ReportMatchResult(ctx context.Context, payload roundevents.MatchResultReportedPayloadV1) (roundservice.ResultResult, error) {
	if f.ReportMatchResultFunc != nil {
		return f.ReportMatchResultFunc(ctx, payload)
	}
	return results.Ok[roundevents.MatchUpdatedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.MatchUpdatedPayloadV1{
		TournamentID: payload.TournamentID,
		Round:        payload.Round,
		MatchID:      payload.MatchID,
	}), nil
}

func (f *FakeRoundService) CompleteRound(ctx context.Context, payload roundevents.CompletionRequestedPayloadV1) (roundservice.CompletionResult, error) {
	if f.CompleteRoundFunc != nil {
		return f.CompleteRoundFunc(ctx, payload)
	}
	return results.Ok[roundservice.CompletionOutcome, roundevents.OperationFailedPayloadV1](roundservice.CompletionOutcome{
		Completed: roundevents.RoundCompletedPayloadV1{
			TournamentID: payload.TournamentID,
			Round:        payload.Round,
		},
	}), nil
}

func (f *FakeRoundService) ImportResults(ctx context.Context, payload roundevents.ResultsImportRequestedPayloadV1) (roundservice.ImportResult, error) {
	if f.ImportResultsFunc != nil {
		return f.ImportResultsFunc(ctx, payload)
	}
	return results.Ok[roundevents.ResultsImportedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.ResultsImportedPayloadV1{
		TournamentID: payload.TournamentID,
		Round:        payload.Round,
	}), nil
}

func (f *FakeRoundService) GetRoundSnapshot(ctx context.Context, tournamentID uuid.UUID, number int) (*roundtypes.Snapshot, error) {
	if f.GetRoundSnapshotFunc != nil {
		return f.GetRoundSnapshotFunc(ctx, tournamentID, number)
	}
	return &roundtypes.Snapshot{Round: number, Status: roundtypes.StatusDraft}, nil
}

// scheduledReminder records one ScheduleApprovalReminder call.
type scheduledReminder struct {
	TournamentID uuid.UUID
	Round        int
	RemindAt     time.Time
	Status       roundtypes.Status
}

// FakeQueueService records reminder scheduling and cancellation calls.
type FakeQueueService struct {
	trace     []string
	Scheduled []scheduledReminder
	Cancelled []uuid.UUID

	ScheduleApprovalReminderFunc func(ctx context.Context, tournamentID uuid.UUID, round int, remindAt time.Time, status roundtypes.Status) error
	CancelTournamentJobsFunc     func(ctx context.Context, tournamentID uuid.UUID) error
}

func (f *FakeQueueService) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeQueueService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeQueueService) ScheduleApprovalReminder(ctx context.Context, tournamentID uuid.UUID, round int, remindAt time.Time, status roundtypes.Status) error {
	f.record("ScheduleApprovalReminder")
	f.Scheduled = append(f.Scheduled, scheduledReminder{
		TournamentID: tournamentID,
		Round:        round,
		RemindAt:     remindAt,
		Status:       status,
	})
	if f.ScheduleApprovalReminderFunc != nil {
		return f.ScheduleApprovalReminderFunc(ctx, tournamentID, round, remindAt, status)
	}
	return nil
}

func (f *FakeQueueService) CancelTournamentJobs(ctx context.Context, tournamentID uuid.UUID) error {
	f.record("CancelTournamentJobs")
	f.Cancelled = append(f.Cancelled, tournamentID)
	if f.CancelTournamentJobsFunc != nil {
		return f.CancelTournamentJobsFunc(ctx, tournamentID)
	}
	return nil
}

func (f *FakeQueueService) HealthCheck(ctx context.Context) error { return nil }
func (f *FakeQueueService) Start(ctx context.Context) error       { return nil }
func (f *FakeQueueService) Stop(ctx context.Context) error        { return nil }

func newTestHandlers(service *FakeRoundService, queue *FakeQueueService, reminderDelay time.Duration) Handlers {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics(prometheus.NewRegistry(), "test")
	tracer := otel.Tracer("test")

	// A nil *FakeQueueService must become a nil interface, not a typed nil.
	if queue == nil {
		return NewRoundHandlers(service, nil, reminderDelay, logger, tracer, utils.NewHelpers(), metrics)
	}
	return NewRoundHandlers(service, queue, reminderDelay, logger, tracer, utils.NewHelpers(), metrics)
}
