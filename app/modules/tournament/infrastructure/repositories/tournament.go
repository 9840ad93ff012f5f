package tournamentdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
)

// ErrNotFound is returned when a tournament or related row does not exist.
var ErrNotFound = errors.New("not found")

// TournamentDBImpl is the bun-backed implementation of Repository.
type TournamentDBImpl struct{}

// NewRepository returns a Repository backed by bun.
func NewRepository() Repository {
	return &TournamentDBImpl{}
}

// CreateTournament inserts a new tournament row.
func (r *TournamentDBImpl) CreateTournament(ctx context.Context, db bun.IDB, t *tournamenttypes.Tournament) error {
	if _, err := db.NewInsert().Model(t).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

// GetTournament fetches a tournament by ID.
func (r *TournamentDBImpl) GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamenttypes.Tournament, error) {
	t := new(tournamenttypes.Tournament)
	err := db.NewSelect().
		Model(t).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tournament %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tournament: %w", err)
	}
	return t, nil
}

// SetCurrentRound advances the tournament's round counter and, when the
// tournament is over, flips the finished flag in the same statement.
func (r *TournamentDBImpl) SetCurrentRound(ctx context.Context, db bun.IDB, id uuid.UUID, round int, finished bool) error {
	res, err := db.NewUpdate().
		Model((*tournamenttypes.Tournament)(nil)).
		Set("current_round = ?", round).
		Set("finished = ?", finished).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tournament round: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tournament %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateParticipants inserts the registered pool in one statement.
func (r *TournamentDBImpl) CreateParticipants(ctx context.Context, db bun.IDB, participants []*tournamenttypes.Participant) error {
	if len(participants) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&participants).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create participants: %w", err)
	}
	return nil
}

// GetParticipants returns every participant of a tournament, eliminated or not.
func (r *TournamentDBImpl) GetParticipants(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.Participant, error) {
	var participants []tournamenttypes.Participant
	err := db.NewSelect().
		Model(&participants).
		Where("tournament_id = ?", tournamentID).
		Order("joined_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %w", err)
	}
	return participants, nil
}

// GetEligibleParticipants returns the non-eliminated pool, ordered by join
// time so draft generation sees a stable input.
func (r *TournamentDBImpl) GetEligibleParticipants(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.Participant, error) {
	var participants []tournamenttypes.Participant
	err := db.NewSelect().
		Model(&participants).
		Where("tournament_id = ?", tournamentID).
		Where("eliminated = FALSE").
		Order("joined_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligible participants: %w", err)
	}
	return participants, nil
}

// MarkEliminated flags the given participants as out of the tournament.
func (r *TournamentDBImpl) MarkEliminated(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.NewUpdate().
		Model((*tournamenttypes.Participant)(nil)).
		Set("eliminated = TRUE").
		Where("tournament_id = ?", tournamentID).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark participants eliminated: %w", err)
	}
	return nil
}

// InitStandings seeds zeroed standings rows for a freshly registered pool.
func (r *TournamentDBImpl) InitStandings(ctx context.Context, db bun.IDB, entries []*tournamenttypes.StandingsEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&entries).Exec(ctx); err != nil {
		return fmt.Errorf("failed to initialize standings: %w", err)
	}
	return nil
}

// GetStandings returns the cumulative table ordered by wins desc, losses asc,
// then username for a stable presentation order.
func (r *TournamentDBImpl) GetStandings(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamenttypes.StandingsEntry, error) {
	var entries []tournamenttypes.StandingsEntry
	err := db.NewSelect().
		Model(&entries).
		Where("tournament_id = ?", tournamentID).
		Order("wins DESC", "losses ASC", "username ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings: %w", err)
	}
	return entries, nil
}

// ApplyStandingsDeltas adds a completed round's increments to the ledger.
// Each delta is a single UPDATE; callers run this inside the completion
// transaction so the round flips to COMPLETED atomically with the table.
func (r *TournamentDBImpl) ApplyStandingsDeltas(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, deltas []StandingsDelta) error {
	for _, d := range deltas {
		res, err := db.NewUpdate().
			Model((*tournamenttypes.StandingsEntry)(nil)).
			Set("wins = wins + ?", d.Wins).
			Set("losses = losses + ?", d.Losses).
			Set("games_played = games_played + ?", d.GamesPlayed).
			Where("tournament_id = ?", tournamentID).
			Where("participant_id = ?", d.ParticipantID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to apply standings delta for %s: %w", d.ParticipantID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("standings entry for participant %s: %w", d.ParticipantID, ErrNotFound)
		}
	}
	return nil
}
