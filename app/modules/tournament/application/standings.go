package tournamentservice

import (
	"context"

	"github.com/google/uuid"

	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
)

// GetStandings returns the cumulative table ordered by wins desc, losses asc,
// username asc. Pure read path: it reflects the latest completed round plus
// any results already recorded for the round in play.
func (s *TournamentService) GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]tournamenttypes.StandingsEntry, error) {
	return s.repo.GetStandings(ctx, s.db, tournamentID)
}
