package tournamentdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
)

// StandingsDelta is one participant's increment from a completed round.
type StandingsDelta struct {
	ParticipantID uuid.UUID
	Wins          int
	Losses        int
	GamesPlayed   int
}

// Repository is the persistence surface for tournaments, the participant
// pool, and the standings ledger. Methods take a bun.IDB so callers can run
// them inside a transaction.
type Repository interface {
	CreateTournament(ctx context.Context, db bun.IDB, t *tournamenttypes.Tournament) error
	GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamenttypes.Tournament, error)
	SetCurrentRound(ctx context.Context, db bun.IDB, id uuid.UUID, round int, finished bool) error

	CreateParticipants(ctx context.Context, db bun.IDB, participants []*tournamenttypes.Participant) error
	GetParticipants(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.Participant, error)
	GetEligibleParticipants(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.Participant, error)
	MarkEliminated(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, ids []uuid.UUID) error

	InitStandings(ctx context.Context, db bun.IDB, entries []*tournamenttypes.StandingsEntry) error
	GetStandings(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.StandingsEntry, error)
	ApplyStandingsDeltas(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, deltas []StandingsDelta) error
}
