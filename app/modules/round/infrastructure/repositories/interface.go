package rounddb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
)

// Repository is the persistence surface for rounds and their matches.
// Methods take a bun.IDB so the completion flow can run them inside a
// single transaction.
type Repository interface {
	CreateRound(ctx context.Context, db bun.IDB, round *roundtypes.Round) error
	GetRound(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int) (*roundtypes.Round, error)
	GetRounds(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]roundtypes.Round, error)

	// UpdateRoster replaces the roster of a round still in DRAFT. The write is
	// guarded on status so a regeneration racing an approval loses cleanly;
	// the bool reports whether the guard matched.
	UpdateRoster(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, roster *roundtypes.Roster) (bool, error)

	// UpdatePairing writes the pairing of a round in TEAMS_APPROVED, guarded
	// the same way as UpdateRoster.
	UpdatePairing(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, pairing *roundtypes.Pairing) (bool, error)

	// CASStatus transitions the round from one status to another. It returns
	// false when the round was not in the expected status, which is how
	// concurrent approvals and double completions are rejected.
	CASStatus(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, from, to roundtypes.Status) (bool, error)

	// CompleteRound flips MATCHES_APPROVED to COMPLETED and stores the
	// completion meta in the same guarded update.
	CompleteRound(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, meta *roundtypes.Meta) (bool, error)

	ReplaceMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, matches []*roundtypes.Match) error
	GetMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int) ([]roundtypes.Match, error)
	GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*roundtypes.Match, error)
	UpdateMatchResult(ctx context.Context, db bun.IDB, match *roundtypes.Match) error
}
