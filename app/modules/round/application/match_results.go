package roundservice

import (
	"context"
	"fmt"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	"github.com/trycohn/1337-sub004/internal/results"
)

// ReportMatchResult records a finished score from the match-play subsystem.
// Results are accepted only while the round sits in MATCHES_APPROVED; a
// re-report before completion overwrites the previous score.
func (s *RoundService) ReportMatchResult(ctx context.Context, payload roundevents.MatchResultReportedPayloadV1) (ResultResult, error) {
	fail := func(code string, status roundtypes.Status, reason string) ResultResult {
		return results.Fail[roundevents.MatchUpdatedPayloadV1](failure(payload.TournamentID, payload.Round, "ReportMatchResult", code, status, reason))
	}

	return withTelemetry(s, ctx, "ReportMatchResult", payload.TournamentID, func(ctx context.Context) (ResultResult, error) {
		s.locks.Lock(payload.TournamentID)
		defer s.locks.Unlock(payload.TournamentID)

		tournament, err := s.poolRepo.GetTournament(ctx, s.db, payload.TournamentID)
		if err != nil {
			return ResultResult{}, err
		}

		round, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.Round)
		if err != nil {
			return ResultResult{}, err
		}
		if round.Status == roundtypes.StatusCompleted {
			return fail(CodeRoundAlreadyCompleted, round.Status, "round is already completed"), nil
		}
		if round.Status != roundtypes.StatusMatchesApproved {
			return fail(CodeInvalidTransition, round.Status, "results are accepted only after matches are approved"), nil
		}

		match, err := s.repo.GetMatch(ctx, s.db, payload.MatchID)
		if err != nil {
			return ResultResult{}, err
		}
		if match.TournamentID != payload.TournamentID || match.RoundNumber != payload.Round {
			return fail(CodeInvalidResult, round.Status, "match does not belong to this round"), nil
		}
		if match.Bye {
			return fail(CodeInvalidResult, round.Status, "bye matches have no reportable result"), nil
		}

		if err := validateScore(payload.ScoreA, payload.ScoreB, tournament.GamesToWin); err != nil {
			return fail(CodeInvalidResult, round.Status, err.Error()), nil
		}

		match.ScoreA = payload.ScoreA
		match.ScoreB = payload.ScoreB
		match.Completed = true
		if payload.ScoreA > payload.ScoreB {
			match.WinnerTeam = match.TeamA
		} else {
			match.WinnerTeam = match.TeamB
		}

		if err := s.repo.UpdateMatchResult(ctx, s.db, match); err != nil {
			return ResultResult{}, err
		}

		return results.Ok[roundevents.MatchUpdatedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.MatchUpdatedPayloadV1{
			TournamentID: payload.TournamentID,
			Round:        payload.Round,
			MatchID:      payload.MatchID,
		}), nil
	})
}

// validateScore checks that exactly one side reached the configured
// games-to-win and the other fell short.
func validateScore(scoreA, scoreB, gamesToWin int) error {
	if scoreA < 0 || scoreB < 0 {
		return fmt.Errorf("scores must be non-negative, got %d:%d", scoreA, scoreB)
	}
	hi, lo := scoreA, scoreB
	if scoreB > scoreA {
		hi, lo = scoreB, scoreA
	}
	if hi != gamesToWin || lo >= gamesToWin {
		return fmt.Errorf("score %d:%d is not a finished first-to-%d result", scoreA, scoreB, gamesToWin)
	}
	return nil
}
