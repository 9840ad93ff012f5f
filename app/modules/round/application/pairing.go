package roundservice

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
	"github.com/trycohn/1337-sub004/internal/results"
)

// GeneratePairing builds or replaces the match pairing of a round whose
// roster is locked. Every team appears exactly once; on an odd team count one
// team draws a bye, recorded as an auto-win that never touches standings.
// Regenerable until the pairing is approved.
func (s *RoundService) GeneratePairing(ctx context.Context, payload roundevents.PairingRequestedPayloadV1) (PairingResult, error) {
	fail := func(code string, status roundtypes.Status, reason string) PairingResult {
		return results.Fail[roundevents.PairingGeneratedPayloadV1](failure(payload.TournamentID, payload.Round, "GeneratePairing", code, status, reason))
	}

	return withTelemetry(s, ctx, "GeneratePairing", payload.TournamentID, func(ctx context.Context) (PairingResult, error) {
		s.locks.Lock(payload.TournamentID)
		defer s.locks.Unlock(payload.TournamentID)

		tournament, err := s.poolRepo.GetTournament(ctx, s.db, payload.TournamentID)
		if err != nil {
			return PairingResult{}, err
		}

		round, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.Round)
		if err != nil {
			return PairingResult{}, err
		}
		switch round.Status {
		case roundtypes.StatusTeamsApproved:
			// pairing allowed
		case roundtypes.StatusDraft:
			return fail(CodeRosterNotApproved, round.Status, "roster must be approved before pairing"), nil
		default:
			return fail(CodeRoundImmutable, round.Status, "pairing can no longer be regenerated"), nil
		}

		if len(round.Roster.Teams)%2 != 0 && tournament.ByePolicy == tournamenttypes.ByePolicyReject {
			return fail(CodeOddTeamCount, round.Status, fmt.Sprintf("%d teams cannot be paired without a bye", len(round.Roster.Teams))), nil
		}

		seed := rand.Int63()
		if payload.Seed != nil {
			seed = *payload.Seed
		}
		pairing := buildPairing(round.Roster.Teams, payload.Mode, seed)

		matches := make([]*roundtypes.Match, 0, len(pairing.Pairs))
		for _, pair := range pairing.Pairs {
			match := &roundtypes.Match{
				ID:           pair.MatchID,
				TournamentID: payload.TournamentID,
				RoundNumber:  payload.Round,
				TeamA:        pair.TeamA,
				TeamB:        pair.TeamB,
				Bye:          pair.Bye,
			}
			if pair.Bye {
				// Auto-win: the bye team advances without playing.
				match.Completed = true
				match.WinnerTeam = pair.TeamA
			} else {
				match.WinnerTeam = -1
			}
			matches = append(matches, match)
		}

		var guarded bool
		err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			guarded, err = s.repo.UpdatePairing(ctx, tx, payload.TournamentID, payload.Round, &pairing)
			if err != nil || !guarded {
				return err
			}
			return s.repo.ReplaceMatches(ctx, tx, payload.TournamentID, payload.Round, matches)
		})
		if err != nil {
			return PairingResult{}, err
		}
		if !guarded {
			return fail(CodeRoundImmutable, round.Status, "round left teams_approved while pairing"), nil
		}

		return results.Ok[roundevents.PairingGeneratedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.PairingGeneratedPayloadV1{
			TournamentID: payload.TournamentID,
			Round:        payload.Round,
			Pairing:      pairing,
		}), nil
	})
}

// buildPairing pairs team indices. Random mode shuffles; adjacent mode sorts
// by summed rating and pairs neighbours so match strength is even. The
// leftover team on an odd count draws the bye.
func buildPairing(teams []roundtypes.Team, mode roundtypes.PairingMode, seed int64) roundtypes.Pairing {
	order := make([]roundtypes.Team, len(teams))
	copy(order, teams)

	switch mode {
	case roundtypes.PairingModeAdjacent:
		sort.Slice(order, func(i, j int) bool {
			ri, rj := order[i].Rating(), order[j].Rating()
			if ri != rj {
				return ri > rj
			}
			return order[i].Index < order[j].Index
		})
	default:
		rnd := rand.New(rand.NewSource(seed))
		rnd.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		mode = roundtypes.PairingModeRandom
	}

	var pairs []roundtypes.Pair
	for i := 0; i+1 < len(order); i += 2 {
		pairs = append(pairs, roundtypes.Pair{
			MatchID: uuid.New(),
			TeamA:   order[i].Index,
			TeamB:   order[i+1].Index,
		})
	}
	if len(order)%2 != 0 {
		pairs = append(pairs, roundtypes.Pair{
			MatchID: uuid.New(),
			TeamA:   order[len(order)-1].Index,
			TeamB:   -1,
			Bye:     true,
		})
	}

	return roundtypes.Pairing{Mode: mode, Pairs: pairs}
}
