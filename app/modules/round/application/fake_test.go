package roundservice

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"

	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
	tournamentdb "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/repositories"
	"github.com/trycohn/1337-sub004/internal/locks"
	"github.com/trycohn/1337-sub004/internal/observability"
)

// FakeDB is a minimal fake that satisfies the requirement for RunInTx.
type FakeDB struct {
	bun.IDB
}

// RunInTx simply executes the provided function, bypassing real DB logic. As
// long as the repo methods use the db parameter passed to them, this works.
func (f *FakeDB) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(context.Context, bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

// FakeRoundRepository provides a programmable stub for the rounddb.Repository
// interface.
type FakeRoundRepository struct {
	trace []string

	CreateRoundFunc       func(ctx context.Context, db bun.IDB, round *roundtypes.Round) error
	GetRoundFunc          func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int) (*roundtypes.Round, error)
	GetRoundsFunc         func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]roundtypes.Round, error)
	UpdateRosterFunc      func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, roster *roundtypes.Roster) (bool, error)
	UpdatePairingFunc     func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, pairing *roundtypes.Pairing) (bool, error)
	CASStatusFunc         func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, from, to roundtypes.Status) (bool, error)
	CompleteRoundFunc     func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, meta *roundtypes.Meta) (bool, error)
	ReplaceMatchesFunc    func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, matches []*roundtypes.Match) error
	GetMatchesFunc        func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int) ([]roundtypes.Match, error)
	GetMatchFunc          func(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*roundtypes.Match, error)
	UpdateMatchResultFunc func(ctx context.Context, db bun.IDB, match *roundtypes.Match) error
}

func (f *FakeRoundRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRoundRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRoundRepository) CreateRound(ctx context.Context, db bun.IDB, round *roundtypes.Round) error {
	f.record("CreateRound")
	if f.CreateRoundFunc != nil {
		return f.CreateRoundFunc(ctx, db, round)
	}
	return nil
}

func (f *FakeRoundRepository) GetRound(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int) (*roundtypes.Round, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, tournamentID, number)
	}
	return nil, rounddb.ErrNotFound
}

func (f *FakeRoundRepository) GetRounds(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]roundtypes.Round, error) {
	f.record("GetRounds")
	if f.GetRoundsFunc != nil {
		return f.GetRoundsFunc(ctx, db, tournamentID)
	}
	return nil, nil
}

func (f *FakeRoundRepository) UpdateRoster(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, roster *roundtypes.Roster) (bool, error) {
	f.record("UpdateRoster")
	if f.UpdateRosterFunc != nil {
		return f.UpdateRosterFunc(ctx, db, tournamentID, number, roster)
	}
	return true, nil
}

func (f *FakeRoundRepository) UpdatePairing(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, pairing *roundtypes.Pairing) (bool, error) {
	f.record("UpdatePairing")
	if f.UpdatePairingFunc != nil {
		return f.UpdatePairingFunc(ctx, db, tournamentID, number, pairing)
	}
	return true, nil
}

func (f *FakeRoundRepository) CASStatus(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, from, to roundtypes.Status) (bool, error) {
	f.record("CASStatus")
	if f.CASStatusFunc != nil {
		return f.CASStatusFunc(ctx, db, tournamentID, number, from, to)
	}
	return true, nil
}

func (f *FakeRoundRepository) CompleteRound(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, meta *roundtypes.Meta) (bool, error) {
	f.record("CompleteRound")
	if f.CompleteRoundFunc != nil {
		return f.CompleteRoundFunc(ctx, db, tournamentID, number, meta)
	}
	return true, nil
}

func (f *FakeRoundRepository) ReplaceMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, matches []*roundtypes.Match) error {
	f.record("ReplaceMatches")
	if f.ReplaceMatchesFunc != nil {
		return f.ReplaceMatchesFunc(ctx, db, tournamentID, number, matches)
	}
	return nil
}

func (f *FakeRoundRepository) GetMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int) ([]roundtypes.Match, error) {
	f.record("GetMatches")
	if f.GetMatchesFunc != nil {
		return f.GetMatchesFunc(ctx, db, tournamentID, number)
	}
	return nil, nil
}

func (f *FakeRoundRepository) GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*roundtypes.Match, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, db, matchID)
	}
	return nil, rounddb.ErrNotFound
}

func (f *FakeRoundRepository) UpdateMatchResult(ctx context.Context, db bun.IDB, match *roundtypes.Match) error {
	f.record("UpdateMatchResult")
	if f.UpdateMatchResultFunc != nil {
		return f.UpdateMatchResultFunc(ctx, db, match)
	}
	return nil
}

// FakePoolRepository provides a programmable stub for the
// tournamentdb.Repository interface.
type FakePoolRepository struct {
	trace []string

	CreateTournamentFunc        func(ctx context.Context, db bun.IDB, t *tournamenttypes.Tournament) error
	GetTournamentFunc           func(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamenttypes.Tournament, error)
	SetCurrentRoundFunc         func(ctx context.Context, db bun.IDB, id uuid.UUID, round int, finished bool) error
	CreateParticipantsFunc      func(ctx context.Context, db bun.IDB, participants []*tournamenttypes.Participant) error
	GetParticipantsFunc         func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.Participant, error)
	GetEligibleParticipantsFunc func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.Participant, error)
	MarkEliminatedFunc          func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, ids []uuid.UUID) error
	InitStandingsFunc           func(ctx context.Context, db bun.IDB, entries []*tournamenttypes.StandingsEntry) error
	GetStandingsFunc            func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.StandingsEntry, error)
	ApplyStandingsDeltasFunc    func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, deltas []tournamentdb.StandingsDelta) error
}

func (f *FakePoolRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakePoolRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePoolRepository) CreateTournament(ctx context.Context, db bun.IDB, t *tournamenttypes.Tournament) error {
	f.record("CreateTournament")
	if f.CreateTournamentFunc != nil {
		return f.CreateTournamentFunc(ctx, db, t)
	}
	return nil
}

func (f *FakePoolRepository) GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamenttypes.Tournament, error) {
	f.record("GetTournament")
	if f.GetTournamentFunc != nil {
		return f.GetTournamentFunc(ctx, db, id)
	}
	return nil, tournamentdb.ErrNotFound
}

func (f *FakePoolRepository) SetCurrentRound(ctx context.Context, db bun.IDB, id uuid.UUID, round int, finished bool) error {
	f.record("SetCurrentRound")
	if f.SetCurrentRoundFunc != nil {
		return f.SetCurrentRoundFunc(ctx, db, id, round, finished)
	}
	return nil
}

func (f *FakePoolRepository) CreateParticipants(ctx context.Context, db bun.IDB, participants []*tournamenttypes.Participant) error {
	f.record("CreateParticipants")
	if f.CreateParticipantsFunc != nil {
		return f.CreateParticipantsFunc(ctx, db, participants)
	}
	return nil
}

func (f *FakePoolRepository) GetParticipants(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.Participant, error) {
	f.record("GetParticipants")
	if f.GetParticipantsFunc != nil {
		return f.GetParticipantsFunc(ctx, db, tournamentID)
	}
	return nil, nil
}

func (f *FakePoolRepository) GetEligibleParticipants(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.Participant, error) {
	f.record("GetEligibleParticipants")
	if f.GetEligibleParticipantsFunc != nil {
		return f.GetEligibleParticipantsFunc(ctx, db, tournamentID)
	}
	return nil, nil
}

func (f *FakePoolRepository) MarkEliminated(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, ids []uuid.UUID) error {
	f.record("MarkEliminated")
	if f.MarkEliminatedFunc != nil {
		return f.MarkEliminatedFunc(ctx, db, tournamentID, ids)
	}
	return nil
}

func (f *FakePoolRepository) InitStandings(ctx context.Context, db bun.IDB, entries []*tournamenttypes.StandingsEntry) error {
	f.record("InitStandings")
	if f.InitStandingsFunc != nil {
		return f.InitStandingsFunc(ctx, db, entries)
	}
	return nil
}

func (f *FakePoolRepository) GetStandings(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.StandingsEntry, error) {
	f.record("GetStandings")
	if f.GetStandingsFunc != nil {
		return f.GetStandingsFunc(ctx, db, tournamentID)
	}
	return nil, nil
}

func (f *FakePoolRepository) ApplyStandingsDeltas(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, deltas []tournamentdb.StandingsDelta) error {
	f.record("ApplyStandingsDeltas")
	if f.ApplyStandingsDeltasFunc != nil {
		return f.ApplyStandingsDeltasFunc(ctx, db, tournamentID, deltas)
	}
	return nil
}

// newTestService wires a RoundService against the fakes with discard logging
// and a throwaway metrics registry.
func newTestService(repo *FakeRoundRepository, poolRepo *FakePoolRepository) *RoundService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics(prometheus.NewRegistry(), "test")
	return NewRoundService(&FakeDB{}, repo, poolRepo, nil, logger, metrics, otel.Tracer("test"), locks.NewKeyedMutex())
}
