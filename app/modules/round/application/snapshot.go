package roundservice

import (
	"context"

	"github.com/google/uuid"

	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
)

// GetRoundSnapshot returns one round's full read model: roster, pairing,
// matches, status, and completion meta. Pure read path; it may run alongside
// in-flight writes and observes whatever state last committed.
func (s *RoundService) GetRoundSnapshot(ctx context.Context, tournamentID uuid.UUID, number int) (*roundtypes.Snapshot, error) {
	round, err := s.repo.GetRound(ctx, s.db, tournamentID, number)
	if err != nil {
		return nil, err
	}
	matches, err := s.repo.GetMatches(ctx, s.db, tournamentID, number)
	if err != nil {
		return nil, err
	}

	return &roundtypes.Snapshot{
		Round:   round.Number,
		Status:  round.Status,
		Roster:  round.Roster,
		Pairing: round.Pairing,
		Matches: matches,
		Meta:    round.Meta,
		Final:   round.Final,
	}, nil
}
