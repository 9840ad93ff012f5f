package rounddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
)

// ErrNotFound is returned when a round or match does not exist.
var ErrNotFound = errors.New("not found")

// RoundDBImpl is the bun-backed implementation of Repository.
type RoundDBImpl struct{}

// NewRepository returns a Repository backed by bun.
func NewRepository() Repository {
	return &RoundDBImpl{}
}

// CreateRound inserts a new round row.
func (r *RoundDBImpl) CreateRound(ctx context.Context, db bun.IDB, round *roundtypes.Round) error {
	if _, err := db.NewInsert().Model(round).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// GetRound fetches one round by tournament and number.
func (r *RoundDBImpl) GetRound(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int) (*roundtypes.Round, error) {
	round := new(roundtypes.Round)
	err := db.NewSelect().
		Model(round).
		Where("tournament_id = ?", tournamentID).
		Where("number = ?", number).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("round %d of tournament %s: %w", number, tournamentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch round: %w", err)
	}
	return round, nil
}

// GetRounds returns every round of a tournament in play order.
func (r *RoundDBImpl) GetRounds(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]roundtypes.Round, error) {
	var rounds []roundtypes.Round
	err := db.NewSelect().
		Model(&rounds).
		Where("tournament_id = ?", tournamentID).
		Order("number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rounds: %w", err)
	}
	return rounds, nil
}

// UpdateRoster replaces the draft roster. The status guard makes regeneration
// a no-op once the teams have been approved.
func (r *RoundDBImpl) UpdateRoster(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, roster *roundtypes.Roster) (bool, error) {
	res, err := db.NewUpdate().
		Model((*roundtypes.Round)(nil)).
		Set("roster = ?", roster).
		Set("updated_at = NOW()").
		Where("tournament_id = ?", tournamentID).
		Where("number = ?", number).
		Where("status = ?", roundtypes.StatusDraft).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to update roster: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpdatePairing writes the generated pairing while the round sits in
// TEAMS_APPROVED.
func (r *RoundDBImpl) UpdatePairing(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, pairing *roundtypes.Pairing) (bool, error) {
	res, err := db.NewUpdate().
		Model((*roundtypes.Round)(nil)).
		Set("pairing = ?", pairing).
		Set("updated_at = NOW()").
		Where("tournament_id = ?", tournamentID).
		Where("number = ?", number).
		Where("status = ?", roundtypes.StatusTeamsApproved).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to update pairing: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CASStatus performs a compare-and-set on the round status.
func (r *RoundDBImpl) CASStatus(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, from, to roundtypes.Status) (bool, error) {
	res, err := db.NewUpdate().
		Model((*roundtypes.Round)(nil)).
		Set("status = ?", to).
		Set("updated_at = NOW()").
		Where("tournament_id = ?", tournamentID).
		Where("number = ?", number).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to transition round %s -> %s: %w", from, to, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CompleteRound is the terminal transition: it stores the completion meta and
// flips the status in one guarded update so a second completion attempt
// cannot re-apply standings.
func (r *RoundDBImpl) CompleteRound(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, meta *roundtypes.Meta) (bool, error) {
	res, err := db.NewUpdate().
		Model((*roundtypes.Round)(nil)).
		Set("status = ?", roundtypes.StatusCompleted).
		Set("meta = ?", meta).
		Set("updated_at = NOW()").
		Where("tournament_id = ?", tournamentID).
		Where("number = ?", number).
		Where("status = ?", roundtypes.StatusMatchesApproved).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to complete round: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ReplaceMatches swaps the match set of a round. Pairing regeneration before
// approval rewrites the whole set rather than diffing it.
func (r *RoundDBImpl) ReplaceMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int, matches []*roundtypes.Match) error {
	if _, err := db.NewDelete().
		Model((*roundtypes.Match)(nil)).
		Where("tournament_id = ?", tournamentID).
		Where("round_number = ?", number).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear matches: %w", err)
	}
	if len(matches) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&matches).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert matches: %w", err)
	}
	return nil
}

// GetMatches returns the matches of a round in pairing order.
func (r *RoundDBImpl) GetMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, number int) ([]roundtypes.Match, error) {
	var matches []roundtypes.Match
	err := db.NewSelect().
		Model(&matches).
		Where("tournament_id = ?", tournamentID).
		Where("round_number = ?", number).
		Order("team_a ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}
	return matches, nil
}

// GetMatch fetches one match by ID.
func (r *RoundDBImpl) GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*roundtypes.Match, error) {
	match := new(roundtypes.Match)
	err := db.NewSelect().
		Model(match).
		Where("id = ?", matchID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match: %w", err)
	}
	return match, nil
}

// UpdateMatchResult persists a reported score and completion state.
func (r *RoundDBImpl) UpdateMatchResult(ctx context.Context, db bun.IDB, match *roundtypes.Match) error {
	res, err := db.NewUpdate().
		Model(match).
		Column("score_a", "score_b", "completed", "winner_team").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update match result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("match %s: %w", match.ID, ErrNotFound)
	}
	return nil
}
