package roundservice

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
	"github.com/trycohn/1337-sub004/internal/results"
)

// GenerateDraft builds or replaces the team roster of the current round.
// Regeneration is wholesale: the previous draft, if any, is discarded. Only a
// round still in DRAFT accepts a draft.
func (s *RoundService) GenerateDraft(ctx context.Context, payload roundevents.DraftRequestedPayloadV1) (DraftResult, error) {
	fail := func(code string, status roundtypes.Status, reason string) DraftResult {
		return results.Fail[roundevents.DraftRegeneratedPayloadV1](failure(payload.TournamentID, payload.Round, "GenerateDraft", code, status, reason))
	}

	return withTelemetry(s, ctx, "GenerateDraft", payload.TournamentID, func(ctx context.Context) (DraftResult, error) {
		s.locks.Lock(payload.TournamentID)
		defer s.locks.Unlock(payload.TournamentID)

		tournament, err := s.poolRepo.GetTournament(ctx, s.db, payload.TournamentID)
		if err != nil {
			return DraftResult{}, err
		}
		if tournament.Finished {
			return fail(CodeTournamentFinished, "", "tournament is finished"), nil
		}
		if payload.Round != tournament.CurrentRound {
			return fail(CodeInvalidTransition, "", fmt.Sprintf("round %d is not the current round (%d)", payload.Round, tournament.CurrentRound)), nil
		}

		round, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.Round)
		if err != nil {
			return DraftResult{}, err
		}
		if round.Status != roundtypes.StatusDraft {
			return fail(CodeRoundImmutable, round.Status, "roster can only be regenerated while the round is in draft"), nil
		}

		pool, err := s.eligiblePool(ctx, tournament, round)
		if err != nil {
			return DraftResult{}, err
		}
		if len(pool) < 2*tournament.TeamSize {
			return fail(CodeNotEnoughParticipants, round.Status, fmt.Sprintf("need at least %d eligible participants, have %d", 2*tournament.TeamSize, len(pool))), nil
		}

		// The reads above already happened; bail before building and writing
		// so a cancelled request leaves the round untouched.
		if err := ctx.Err(); err != nil {
			return DraftResult{}, err
		}

		seed := rand.Int63()
		if payload.Seed != nil {
			seed = *payload.Seed
		}
		roster := buildRoster(pool, tournament, seed)

		ok, err := s.repo.UpdateRoster(ctx, s.db, payload.TournamentID, payload.Round, &roster)
		if err != nil {
			return DraftResult{}, err
		}
		if !ok {
			return fail(CodeRoundImmutable, round.Status, "round left draft while generating"), nil
		}

		return results.Ok[roundevents.DraftRegeneratedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.DraftRegeneratedPayloadV1{
			TournamentID: payload.TournamentID,
			Round:        payload.Round,
			Roster:       roster,
		}), nil
	})
}

// eligiblePool returns the participants a round drafts from: the non-
// eliminated pool, narrowed to the previous round's finalists when the round
// is the final.
func (s *RoundService) eligiblePool(ctx context.Context, tournament *tournamenttypes.Tournament, round *roundtypes.Round) ([]tournamenttypes.Participant, error) {
	pool, err := s.poolRepo.GetEligibleParticipants(ctx, s.db, tournament.ID)
	if err != nil {
		return nil, err
	}
	if !round.Final {
		return pool, nil
	}

	previous, err := s.repo.GetRound(ctx, s.db, tournament.ID, round.Number-1)
	if err != nil {
		return nil, err
	}
	if previous.Meta == nil || len(previous.Meta.Finalists) == 0 {
		return nil, fmt.Errorf("round %d is final but round %d recorded no finalists", round.Number, previous.Number)
	}

	finalists := make(map[uuid.UUID]bool, len(previous.Meta.Finalists))
	for _, id := range previous.Meta.Finalists {
		finalists[id] = true
	}
	narrowed := pool[:0:0]
	for _, p := range pool {
		if finalists[p.ID] {
			narrowed = append(narrowed, p)
		}
	}
	return narrowed, nil
}

// buildRoster partitions the pool into floor(N/teamSize) teams. The remainder
// participants are excluded-for-balance for this round only. Deterministic
// for a given seed.
func buildRoster(pool []tournamenttypes.Participant, tournament *tournamenttypes.Tournament, seed int64) roundtypes.Roster {
	rnd := rand.New(rand.NewSource(seed))

	members := make([]roundtypes.TeamMember, len(pool))
	for i, p := range pool {
		members[i] = roundtypes.TeamMember{
			ParticipantID: p.ID,
			Username:      p.Username,
			Rating:        p.Rating(tournament.RatingAxis),
		}
	}

	teamCount := len(members) / tournament.TeamSize
	var teams []roundtypes.Team
	var excluded []roundtypes.TeamMember

	switch tournament.RatingMode {
	case tournamenttypes.RatingModeRating:
		// Sort descending by rating; ties broken by participant ID so the
		// draft is reproducible.
		sort.Slice(members, func(i, j int) bool {
			if members[i].Rating != members[j].Rating {
				return members[i].Rating > members[j].Rating
			}
			return members[i].ParticipantID.String() < members[j].ParticipantID.String()
		})
		drafted := members[:teamCount*tournament.TeamSize]
		excluded = members[teamCount*tournament.TeamSize:]
		teams = snakeDraft(drafted, teamCount)

	default:
		rnd.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		drafted := members[:teamCount*tournament.TeamSize]
		excluded = members[teamCount*tournament.TeamSize:]
		teams = make([]roundtypes.Team, teamCount)
		for i := range teams {
			teams[i] = roundtypes.Team{Index: i}
		}
		for i, m := range drafted {
			t := &teams[i%teamCount]
			t.Members = append(t.Members, m)
		}
	}

	for i := range teams {
		teams[i].CaptainID = pickCaptain(teams[i].Members)
	}

	return roundtypes.Roster{Teams: teams, Excluded: excluded, Seed: seed}
}

// snakeDraft deals rating-sorted members team 1..k, then k..1, repeating, so
// summed team ratings stay balanced.
func snakeDraft(members []roundtypes.TeamMember, teamCount int) []roundtypes.Team {
	teams := make([]roundtypes.Team, teamCount)
	for i := range teams {
		teams[i] = roundtypes.Team{Index: i}
	}
	forward := true
	for i := 0; i < len(members); i += teamCount {
		for j := 0; j < teamCount; j++ {
			idx := j
			if !forward {
				idx = teamCount - 1 - j
			}
			teams[idx].Members = append(teams[idx].Members, members[i+j])
		}
		forward = !forward
	}
	return teams
}

// pickCaptain returns the highest-rated member; when ratings are absent or
// tied it falls back to the first member, which preserves join order.
func pickCaptain(members []roundtypes.TeamMember) uuid.UUID {
	best := members[0]
	for _, m := range members[1:] {
		if m.Rating > best.Rating {
			best = m
		}
	}
	return best.ParticipantID
}
