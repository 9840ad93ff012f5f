package tournamentservice

import (
	"context"

	"github.com/google/uuid"

	tournamentevents "github.com/trycohn/1337-sub004/app/modules/tournament/domain/events"
	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
	"github.com/trycohn/1337-sub004/internal/results"
)

type (
	CreateResult   = results.OperationResult[tournamentevents.CreatedPayloadV1, tournamentevents.OperationFailedPayloadV1]
	RegisterResult = results.OperationResult[tournamentevents.ParticipantsRegisteredPayloadV1, tournamentevents.OperationFailedPayloadV1]
)

// Service is the tournament setup and read surface: creation, pool
// registration, cumulative standings, and the standings chart.
type Service interface {
	CreateTournament(ctx context.Context, payload tournamentevents.CreateRequestedPayloadV1) (CreateResult, error)
	RegisterParticipants(ctx context.Context, payload tournamentevents.ParticipantsRegisterRequestedPayloadV1) (RegisterResult, error)
	GetTournament(ctx context.Context, id uuid.UUID) (*tournamenttypes.Tournament, error)
	GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]tournamenttypes.StandingsEntry, error)
	RenderStandingsChart(ctx context.Context, tournamentID uuid.UUID) ([]byte, error)
}
