package roundservice

import (
	"context"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	"github.com/trycohn/1337-sub004/internal/results"
)

// ApproveTeams locks the current draft roster. Valid only from DRAFT; the
// transition is a compare-and-set, so of two concurrent approvals exactly one
// succeeds and the loser observes INVALID_TRANSITION.
func (s *RoundService) ApproveTeams(ctx context.Context, payload roundevents.ApprovalRequestedPayloadV1) (TeamsResult, error) {
	fail := func(code string, status roundtypes.Status, reason string) TeamsResult {
		return results.Fail[roundevents.RostersConfirmedPayloadV1](failure(payload.TournamentID, payload.Round, "ApproveTeams", code, status, reason))
	}

	return withTelemetry(s, ctx, "ApproveTeams", payload.TournamentID, func(ctx context.Context) (TeamsResult, error) {
		s.locks.Lock(payload.TournamentID)
		defer s.locks.Unlock(payload.TournamentID)

		round, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.Round)
		if err != nil {
			return TeamsResult{}, err
		}
		if round.Status != roundtypes.StatusDraft {
			return fail(CodeInvalidTransition, round.Status, "teams can only be approved from draft"), nil
		}
		if round.Roster == nil || len(round.Roster.Teams) == 0 {
			return fail(CodeRosterNotApproved, round.Status, "no draft roster to approve"), nil
		}

		ok, err := s.repo.CASStatus(ctx, s.db, payload.TournamentID, payload.Round, roundtypes.StatusDraft, roundtypes.StatusTeamsApproved)
		if err != nil {
			return TeamsResult{}, err
		}
		if !ok {
			current, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.Round)
			if err != nil {
				return TeamsResult{}, err
			}
			return fail(CodeInvalidTransition, current.Status, "round status changed concurrently"), nil
		}

		return results.Ok[roundevents.RostersConfirmedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.RostersConfirmedPayloadV1{
			TournamentID: payload.TournamentID,
			Round:        payload.Round,
		}), nil
	})
}

// ApproveMatches locks the generated pairing. Valid only from TEAMS_APPROVED
// and only once a pairing exists.
func (s *RoundService) ApproveMatches(ctx context.Context, payload roundevents.ApprovalRequestedPayloadV1) (MatchesResult, error) {
	fail := func(code string, status roundtypes.Status, reason string) MatchesResult {
		return results.Fail[roundevents.MatchesConfirmedPayloadV1](failure(payload.TournamentID, payload.Round, "ApproveMatches", code, status, reason))
	}

	return withTelemetry(s, ctx, "ApproveMatches", payload.TournamentID, func(ctx context.Context) (MatchesResult, error) {
		s.locks.Lock(payload.TournamentID)
		defer s.locks.Unlock(payload.TournamentID)

		round, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.Round)
		if err != nil {
			return MatchesResult{}, err
		}
		if round.Status != roundtypes.StatusTeamsApproved {
			return fail(CodeInvalidTransition, round.Status, "matches can only be approved from teams_approved"), nil
		}
		if round.Pairing == nil || len(round.Pairing.Pairs) == 0 {
			return fail(CodePairingMissing, round.Status, "no pairing generated for this round"), nil
		}

		ok, err := s.repo.CASStatus(ctx, s.db, payload.TournamentID, payload.Round, roundtypes.StatusTeamsApproved, roundtypes.StatusMatchesApproved)
		if err != nil {
			return MatchesResult{}, err
		}
		if !ok {
			current, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.Round)
			if err != nil {
				return MatchesResult{}, err
			}
			return fail(CodeInvalidTransition, current.Status, "round status changed concurrently"), nil
		}

		return results.Ok[roundevents.MatchesConfirmedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.MatchesConfirmedPayloadV1{
			TournamentID: payload.TournamentID,
			Round:        payload.Round,
		}), nil
	})
}
