package roundevents

import (
	"github.com/google/uuid"

	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
)

// Command topics consumed by the round module.
const (
	DraftRequestedV1           = "tournament.round.draft.requested.v1"
	TeamsApprovalRequestedV1   = "tournament.round.teams.approval.requested.v1"
	PairingRequestedV1         = "tournament.round.pairing.requested.v1"
	MatchesApprovalRequestedV1 = "tournament.round.matches.approval.requested.v1"
	MatchResultReportedV1      = "tournament.round.match.result.reported.v1"
	CompletionRequestedV1      = "tournament.round.completion.requested.v1"
	ResultsImportRequestedV1   = "tournament.round.results.import.requested.v1"
)

// Lifecycle topics published by the round module. The first four are the
// notification contract consumed by UI layers.
const (
	RoundCompletedV1   = "tournament.round.completed.v1"
	RostersConfirmedV1 = "tournament.round.rosters.confirmed.v1"
	MatchUpdatedV1     = "tournament.round.match.updated.v1"
	DraftRegeneratedV1 = "tournament.round.draft.regenerated.v1"
	PairingGeneratedV1 = "tournament.round.pairing.generated.v1"
	MatchesConfirmedV1 = "tournament.round.matches.confirmed.v1"
	ApprovalReminderV1 = "tournament.round.approval.reminder.v1"
	ResultsImportedV1  = "tournament.round.results.imported.v1"
	OperationFailedV1  = "tournament.round.operation.failed.v1"
	TournamentWonV1    = "tournament.won.v1"
)

// DraftRequestedPayloadV1 asks the engine to (re)generate a round's roster
// draft. Seed is optional; when nil the generator picks one.
type DraftRequestedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
	Seed         *int64    `json:"seed,omitempty"`
}

// DraftRegeneratedPayloadV1 announces a fresh draft. The previous draft, if
// any, is replaced wholesale.
type DraftRegeneratedPayloadV1 struct {
	TournamentID uuid.UUID         `json:"tournament_id"`
	Round        int               `json:"round"`
	Roster       roundtypes.Roster `json:"roster"`
}

// ApprovalRequestedPayloadV1 is shared by both approval steps.
type ApprovalRequestedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
}

// RostersConfirmedPayloadV1 announces the roster lock.
type RostersConfirmedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
}

// PairingRequestedPayloadV1 asks the engine to (re)generate match pairs.
type PairingRequestedPayloadV1 struct {
	TournamentID uuid.UUID              `json:"tournament_id"`
	Round        int                    `json:"round"`
	Mode         roundtypes.PairingMode `json:"mode"`
	Seed         *int64                 `json:"seed,omitempty"`
}

// PairingGeneratedPayloadV1 announces a fresh pairing.
type PairingGeneratedPayloadV1 struct {
	TournamentID uuid.UUID          `json:"tournament_id"`
	Round        int                `json:"round"`
	Pairing      roundtypes.Pairing `json:"pairing"`
}

// MatchesConfirmedPayloadV1 announces the pairing lock.
type MatchesConfirmedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
}

// MatchResultReportedPayloadV1 carries a finished match score from the
// match-play subsystem.
type MatchResultReportedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
	MatchID      uuid.UUID `json:"match_id"`
	ScoreA       int       `json:"score_a"`
	ScoreB       int       `json:"score_b"`
}

// MatchUpdatedPayloadV1 announces a recorded result.
type MatchUpdatedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
	MatchID      uuid.UUID `json:"match_id"`
}

// CompletionRequestedPayloadV1 asks the engine to close out a round.
type CompletionRequestedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
}

// RoundCompletedPayloadV1 announces the completion outcome.
type RoundCompletedPayloadV1 struct {
	TournamentID uuid.UUID   `json:"tournament_id"`
	Round        int         `json:"round"`
	Finalists    []uuid.UUID `json:"finalists"`
	Eliminated   []uuid.UUID `json:"eliminated"`
	ExtraRound   bool        `json:"extra_round"`
}

// TournamentWonPayloadV1 announces the tournament winner after the final
// round completes.
type TournamentWonPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
	WinnerID     uuid.UUID `json:"winner_id"`
}

// ApprovalReminderPayloadV1 nudges admins about a round stuck before
// approval.
type ApprovalReminderPayloadV1 struct {
	TournamentID uuid.UUID         `json:"tournament_id"`
	Round        int               `json:"round"`
	Status       roundtypes.Status `json:"status"`
}

// ResultsImportRequestedPayloadV1 carries an uploaded results spreadsheet.
type ResultsImportRequestedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
	Filename     string    `json:"filename"`
	Data         []byte    `json:"data"`
}

// ResultsImportedPayloadV1 reports how an import went. RowErrors keeps the
// line-level problems so the caller can fix the sheet.
type ResultsImportedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
	Applied      int       `json:"applied"`
	RowErrors    []string  `json:"row_errors,omitempty"`
}

// OperationFailedPayloadV1 is the failure envelope for every rejected round
// operation. Status carries the round's current state so the caller can
// decide whether to retry, regenerate, or wait.
type OperationFailedPayloadV1 struct {
	TournamentID uuid.UUID         `json:"tournament_id"`
	Round        int               `json:"round"`
	Operation    string            `json:"operation"`
	Code         string            `json:"code"`
	Status       roundtypes.Status `json:"status,omitempty"`
	Reason       string            `json:"reason"`
}
