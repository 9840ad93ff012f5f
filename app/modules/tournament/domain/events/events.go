package tournamentevents

import (
	"github.com/google/uuid"

	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
)

const (
	CreateRequestedV1               = "tournament.create.requested.v1"
	CreatedV1                       = "tournament.created.v1"
	ParticipantsRegisterRequestedV1 = "tournament.participants.register.requested.v1"
	ParticipantsRegisteredV1        = "tournament.participants.registered.v1"
	OperationFailedV1               = "tournament.operation.failed.v1"
)

// CreateRequestedPayloadV1 sets up a new tournament with round 1 in draft.
type CreateRequestedPayloadV1 struct {
	Name       string                              `json:"name"`
	TeamSize   int                                 `json:"team_size"`
	RatingMode tournamenttypes.RatingMode          `json:"rating_mode"`
	RatingAxis tournamenttypes.RatingAxis          `json:"rating_axis"`
	GamesToWin int                                 `json:"games_to_win"`
	ByePolicy  tournamenttypes.ByePolicy           `json:"bye_policy"`
	Schedule   tournamenttypes.EliminationSchedule `json:"schedule"`
}

// CreatedPayloadV1 announces a new tournament.
type CreatedPayloadV1 struct {
	Tournament tournamenttypes.Tournament `json:"tournament"`
}

// ParticipantInputV1 is one pool registration.
type ParticipantInputV1 struct {
	Username string `json:"username"`
	RatingA  int    `json:"rating_a"`
	RatingB  int    `json:"rating_b"`
}

// ParticipantsRegisterRequestedPayloadV1 adds participants to the pool.
// Allowed only while the current round is still in draft, so waiting-list
// arrivals slot in between rounds.
type ParticipantsRegisterRequestedPayloadV1 struct {
	TournamentID uuid.UUID            `json:"tournament_id"`
	Participants []ParticipantInputV1 `json:"participants"`
}

// ParticipantsRegisteredPayloadV1 announces new pool members.
type ParticipantsRegisteredPayloadV1 struct {
	TournamentID uuid.UUID                     `json:"tournament_id"`
	Participants []tournamenttypes.Participant `json:"participants"`
}

// OperationFailedPayloadV1 is the failure envelope for tournament
// operations.
type OperationFailedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Operation    string    `json:"operation"`
	Reason       string    `json:"reason"`
}
