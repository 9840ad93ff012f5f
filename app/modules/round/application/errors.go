package roundservice

import (
	"errors"

	"github.com/google/uuid"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
)

// Failure codes carried in OperationFailedPayloadV1.Code. Every rejected
// operation reports one of these together with the round's current status so
// the caller can decide whether to retry, regenerate, or wait.
const (
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeRoundImmutable        = "ROUND_IMMUTABLE"
	CodeRosterNotApproved     = "ROSTER_NOT_APPROVED"
	CodePairingMissing        = "PAIRING_MISSING"
	CodeMatchesIncomplete     = "MATCHES_INCOMPLETE"
	CodeRoundAlreadyCompleted = "ROUND_ALREADY_COMPLETED"
	CodeTournamentFinished    = "TOURNAMENT_FINISHED"
	CodeOddTeamCount          = "ODD_TEAM_COUNT"
	CodeNotEnoughParticipants = "NOT_ENOUGH_PARTICIPANTS"
	CodeInvalidResult         = "INVALID_RESULT"
	CodeImportRejected        = "IMPORT_REJECTED"
)

// Sentinel errors for callers that reach the service directly rather than
// through the message handlers.
var (
	ErrInvalidTransition     = errors.New("invalid round transition")
	ErrRoundImmutable        = errors.New("round is immutable")
	ErrRosterNotApproved     = errors.New("roster not approved")
	ErrPairingMissing        = errors.New("pairing missing")
	ErrMatchesIncomplete     = errors.New("matches incomplete")
	ErrRoundAlreadyCompleted = errors.New("round already completed")
)

// failure builds the standard rejection payload.
func failure(tournamentID uuid.UUID, round int, operation, code string, status roundtypes.Status, reason string) roundevents.OperationFailedPayloadV1 {
	return roundevents.OperationFailedPayloadV1{
		TournamentID: tournamentID,
		Round:        round,
		Operation:    operation,
		Code:         code,
		Status:       status,
		Reason:       reason,
	}
}
