package roundservice

import (
	"context"

	"github.com/google/uuid"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	"github.com/trycohn/1337-sub004/internal/results"
)

// Result aliases keep the operation signatures readable. The failure side is
// always the shared rejection payload.
type (
	DraftResult      = results.OperationResult[roundevents.DraftRegeneratedPayloadV1, roundevents.OperationFailedPayloadV1]
	TeamsResult      = results.OperationResult[roundevents.RostersConfirmedPayloadV1, roundevents.OperationFailedPayloadV1]
	PairingResult    = results.OperationResult[roundevents.PairingGeneratedPayloadV1, roundevents.OperationFailedPayloadV1]
	MatchesResult    = results.OperationResult[roundevents.MatchesConfirmedPayloadV1, roundevents.OperationFailedPayloadV1]
	ResultResult     = results.OperationResult[roundevents.MatchUpdatedPayloadV1, roundevents.OperationFailedPayloadV1]
	CompletionResult = results.OperationResult[CompletionOutcome, roundevents.OperationFailedPayloadV1]
	ImportResult     = results.OperationResult[roundevents.ResultsImportedPayloadV1, roundevents.OperationFailedPayloadV1]
)

// CompletionOutcome is the success payload of CompleteRound. Won is set only
// when the completed round was the final.
type CompletionOutcome struct {
	Completed roundevents.RoundCompletedPayloadV1
	Won       *roundevents.TournamentWonPayloadV1
}

// Service is the round lifecycle engine: draft generation, the two-phase
// approval gate, pairing generation, result intake, and round completion.
type Service interface {
	GenerateDraft(ctx context.Context, payload roundevents.DraftRequestedPayloadV1) (DraftResult, error)
	ApproveTeams(ctx context.Context, payload roundevents.ApprovalRequestedPayloadV1) (TeamsResult, error)
	GeneratePairing(ctx context.Context, payload roundevents.PairingRequestedPayloadV1) (PairingResult, error)
	ApproveMatches(ctx context.Context, payload roundevents.ApprovalRequestedPayloadV1) (MatchesResult, error)
	ReportMatchResult(ctx context.Context, payload roundevents.MatchResultReportedPayloadV1) (ResultResult, error)
	CompleteRound(ctx context.Context, payload roundevents.CompletionRequestedPayloadV1) (CompletionResult, error)
	ImportResults(ctx context.Context, payload roundevents.ResultsImportRequestedPayloadV1) (ImportResult, error)
	GetRoundSnapshot(ctx context.Context, tournamentID uuid.UUID, number int) (*roundtypes.Snapshot, error)
}
