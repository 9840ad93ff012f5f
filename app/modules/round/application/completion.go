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
	tournamentdb "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/repositories"
	"github.com/trycohn/1337-sub004/internal/results"
)

// ranked is one eligible participant's record after the standings update,
// used to pick finalists and elimination cuts.
type ranked struct {
	ID     uuid.UUID
	Wins   int
	Losses int
}

// CompleteRound closes out a round in MATCHES_APPROVED: applies standings
// deltas, runs the elimination policy, and opens the next round with a fresh
// draft, all inside one transaction. Completing twice is rejected, never
// double-applied.
func (s *RoundService) CompleteRound(ctx context.Context, payload roundevents.CompletionRequestedPayloadV1) (CompletionResult, error) {
	fail := func(code string, status roundtypes.Status, reason string) CompletionResult {
		return results.Fail[CompletionOutcome](failure(payload.TournamentID, payload.Round, "CompleteRound", code, status, reason))
	}

	return withTelemetry(s, ctx, "CompleteRound", payload.TournamentID, func(ctx context.Context) (CompletionResult, error) {
		s.locks.Lock(payload.TournamentID)
		defer s.locks.Unlock(payload.TournamentID)

		tournament, err := s.poolRepo.GetTournament(ctx, s.db, payload.TournamentID)
		if err != nil {
			return CompletionResult{}, err
		}

		round, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.Round)
		if err != nil {
			return CompletionResult{}, err
		}
		if round.Status == roundtypes.StatusCompleted {
			return fail(CodeRoundAlreadyCompleted, round.Status, "round is already completed"), nil
		}
		if round.Status != roundtypes.StatusMatchesApproved {
			return fail(CodeInvalidTransition, round.Status, "completion requires matches_approved"), nil
		}

		matches, err := s.repo.GetMatches(ctx, s.db, payload.TournamentID, payload.Round)
		if err != nil {
			return CompletionResult{}, err
		}
		for _, m := range matches {
			if !m.Bye && !m.Completed {
				return fail(CodeMatchesIncomplete, round.Status, fmt.Sprintf("match %s has no result yet", m.ID)), nil
			}
		}

		deltas := standingsDeltas(round.Roster, matches)

		cutApplies, err := s.eliminationApplies(ctx, tournament, round)
		if err != nil {
			return CompletionResult{}, err
		}

		meta := &roundtypes.Meta{}
		outcome := CompletionOutcome{}

		err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := s.poolRepo.ApplyStandingsDeltas(ctx, tx, payload.TournamentID, deltas); err != nil {
				return err
			}

			standings, err := s.rankedEligible(ctx, tx, tournament.ID)
			if err != nil {
				return err
			}

			nextFinal := false
			switch {
			case round.Final:
				if len(standings) == 0 {
					return fmt.Errorf("final round completed with no eligible participants")
				}
				winner := standings[0].ID
				meta.Winner = &winner
				outcome.Won = &roundevents.TournamentWonPayloadV1{
					TournamentID: payload.TournamentID,
					Round:        payload.Round,
					WinnerID:     winner,
				}

			case cutApplies:
				if len(standings) <= tournament.Schedule.FinalistCutSize {
					for _, r := range standings[:min(tournament.Schedule.FinalistCutSize, len(standings))] {
						meta.Finalists = append(meta.Finalists, r.ID)
					}
					nextFinal = true
				} else if cut, ok := unambiguousCut(standings, tournament.Schedule.CutSize); ok {
					meta.Eliminated = cut
					if len(cut) > 0 {
						if err := s.poolRepo.MarkEliminated(ctx, tx, payload.TournamentID, cut); err != nil {
							return err
						}
					}
				} else {
					// Ambiguous tie at the cut boundary: eliminate no one and
					// play an extra round to disambiguate.
					meta.ExtraRound = true
				}
			}

			ok, err := s.repo.CompleteRound(ctx, tx, payload.TournamentID, payload.Round, meta)
			if err != nil {
				return err
			}
			if !ok {
				return ErrRoundAlreadyCompleted
			}

			if meta.Winner != nil {
				return s.poolRepo.SetCurrentRound(ctx, tx, payload.TournamentID, payload.Round, true)
			}
			return s.openNextRound(ctx, tx, tournament, round, meta, nextFinal)
		})
		if err != nil {
			return CompletionResult{}, err
		}

		outcome.Completed = roundevents.RoundCompletedPayloadV1{
			TournamentID: payload.TournamentID,
			Round:        payload.Round,
			Finalists:    meta.Finalists,
			Eliminated:   meta.Eliminated,
			ExtraRound:   meta.ExtraRound,
		}
		return results.Ok[CompletionOutcome, roundevents.OperationFailedPayloadV1](outcome), nil
	})
}

// standingsDeltas turns the round's matches into per-participant increments.
// Team results propagate to every member equally; byes are a no-op.
func standingsDeltas(roster *roundtypes.Roster, matches []roundtypes.Match) []tournamentdb.StandingsDelta {
	teams := make(map[int]roundtypes.Team, len(roster.Teams))
	for _, t := range roster.Teams {
		teams[t.Index] = t
	}

	acc := make(map[uuid.UUID]*tournamentdb.StandingsDelta)
	bump := func(teamIndex int, win bool) {
		for _, m := range teams[teamIndex].Members {
			d, ok := acc[m.ParticipantID]
			if !ok {
				d = &tournamentdb.StandingsDelta{ParticipantID: m.ParticipantID}
				acc[m.ParticipantID] = d
			}
			if win {
				d.Wins++
			} else {
				d.Losses++
			}
			d.GamesPlayed++
		}
	}

	for _, match := range matches {
		if match.Bye {
			continue
		}
		loser := match.TeamA
		if match.WinnerTeam == match.TeamA {
			loser = match.TeamB
		}
		bump(match.WinnerTeam, true)
		bump(loser, false)
	}

	deltas := make([]tournamentdb.StandingsDelta, 0, len(acc))
	for _, d := range acc {
		deltas = append(deltas, *d)
	}
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].ParticipantID.String() < deltas[j].ParticipantID.String()
	})
	return deltas
}

// eliminationApplies reports whether this round's completion runs the cut.
// Scheduled boundaries apply; so does the round right after an ambiguous
// cut, since the extra round exists to re-attempt it. The final never cuts.
func (s *RoundService) eliminationApplies(ctx context.Context, tournament *tournamenttypes.Tournament, round *roundtypes.Round) (bool, error) {
	if round.Final {
		return false, nil
	}
	if tournament.Schedule.AppliesTo(round.Number) {
		return true, nil
	}
	if round.Number <= 1 {
		return false, nil
	}
	previous, err := s.repo.GetRound(ctx, s.db, tournament.ID, round.Number-1)
	if err != nil {
		return false, err
	}
	return previous.Meta != nil && previous.Meta.ExtraRound, nil
}

// rankedEligible returns the non-eliminated participants ordered by
// (wins desc, losses asc, id asc) against the already-updated standings.
func (s *RoundService) rankedEligible(ctx context.Context, tx bun.Tx, tournamentID uuid.UUID) ([]ranked, error) {
	eligible, err := s.poolRepo.GetEligibleParticipants(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	standings, err := s.poolRepo.GetStandings(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}

	records := make(map[uuid.UUID]ranked, len(standings))
	for _, e := range standings {
		records[e.ParticipantID] = ranked{ID: e.ParticipantID, Wins: e.Wins, Losses: e.Losses}
	}

	out := make([]ranked, 0, len(eligible))
	for _, p := range eligible {
		r, ok := records[p.ID]
		if !ok {
			r = ranked{ID: p.ID}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].Losses != out[j].Losses {
			return out[i].Losses < out[j].Losses
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// unambiguousCut returns the bottom cutSize participant IDs, unless the
// participant just above the cut line shares the boundary win/loss record,
// in which case the cut cannot be determined and no one is eliminated.
// A zero cut size is an empty cut, not an ambiguous one: the round advances
// without forcing an extra round.
func unambiguousCut(standings []ranked, cutSize int) ([]uuid.UUID, bool) {
	if cutSize <= 0 {
		return nil, true
	}
	if len(standings) <= cutSize {
		return nil, false
	}
	boundary := standings[len(standings)-cutSize]
	above := standings[len(standings)-cutSize-1]
	if above.Wins == boundary.Wins && above.Losses == boundary.Losses {
		return nil, false
	}
	cut := make([]uuid.UUID, 0, cutSize)
	for _, r := range standings[len(standings)-cutSize:] {
		cut = append(cut, r.ID)
	}
	return cut, true
}

// openNextRound creates the successor round in DRAFT and pre-runs the draft
// generator over the updated pool. When the pool is too small to form two
// teams the round opens without a roster and the draft must be requested
// after more registrations.
func (s *RoundService) openNextRound(ctx context.Context, tx bun.Tx, tournament *tournamenttypes.Tournament, completed *roundtypes.Round, meta *roundtypes.Meta, final bool) error {
	next := &roundtypes.Round{
		ID:           uuid.New(),
		TournamentID: tournament.ID,
		Number:       completed.Number + 1,
		Status:       roundtypes.StatusDraft,
		Final:        final,
	}

	pool, err := s.poolRepo.GetEligibleParticipants(ctx, tx, tournament.ID)
	if err != nil {
		return err
	}
	if final {
		finalists := make(map[uuid.UUID]bool, len(meta.Finalists))
		for _, id := range meta.Finalists {
			finalists[id] = true
		}
		narrowed := pool[:0:0]
		for _, p := range pool {
			if finalists[p.ID] {
				narrowed = append(narrowed, p)
			}
		}
		pool = narrowed
	}

	if len(pool) >= 2*tournament.TeamSize {
		roster := buildRoster(pool, tournament, rand.Int63())
		next.Roster = &roster
	}

	if err := s.repo.CreateRound(ctx, tx, next); err != nil {
		return err
	}
	return s.poolRepo.SetCurrentRound(ctx, tx, tournament.ID, next.Number, false)
}
