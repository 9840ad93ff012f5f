package roundservice

import (
	"context"
	"fmt"

	"github.com/trycohn/1337-sub004/app/modules/round/application/parsers"
	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
	"github.com/trycohn/1337-sub004/internal/results"
)

// ImportResults applies an uploaded results sheet (CSV or XLSX) as a batch of
// match results. Rows are applied independently: a bad row is reported back
// and skipped, good rows still land. The round must be in MATCHES_APPROVED.
func (s *RoundService) ImportResults(ctx context.Context, payload roundevents.ResultsImportRequestedPayloadV1) (ImportResult, error) {
	fail := func(code string, status roundtypes.Status, reason string) ImportResult {
		return results.Fail[roundevents.ResultsImportedPayloadV1](failure(payload.TournamentID, payload.Round, "ImportResults", code, status, reason))
	}

	return withTelemetry(s, ctx, "ImportResults", payload.TournamentID, func(ctx context.Context) (ImportResult, error) {
		parser, err := s.parserFactory.GetParser(payload.Filename)
		if err != nil {
			return fail(CodeImportRejected, "", err.Error()), nil
		}
		rows, err := parser.Parse(payload.Data)
		if err != nil {
			return fail(CodeImportRejected, "", err.Error()), nil
		}

		s.locks.Lock(payload.TournamentID)
		defer s.locks.Unlock(payload.TournamentID)

		tournament, err := s.poolRepo.GetTournament(ctx, s.db, payload.TournamentID)
		if err != nil {
			return ImportResult{}, err
		}
		round, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.Round)
		if err != nil {
			return ImportResult{}, err
		}
		if round.Status != roundtypes.StatusMatchesApproved {
			return fail(CodeInvalidTransition, round.Status, "results can only be imported after matches are approved"), nil
		}

		applied := 0
		var rowErrors []string
		for _, row := range rows {
			if err := s.applyImportedRow(ctx, tournament.GamesToWin, payload, row); err != nil {
				rowErrors = append(rowErrors, err.Error())
				continue
			}
			applied++
		}

		s.logger.InfoContext(ctx, "Results sheet imported",
			attr.TournamentID(payload.TournamentID),
			attr.RoundNumber(payload.Round),
			attr.Int("applied", applied),
			attr.Int("rejected", len(rowErrors)),
		)

		return results.Ok[roundevents.ResultsImportedPayloadV1, roundevents.OperationFailedPayloadV1](roundevents.ResultsImportedPayloadV1{
			TournamentID: payload.TournamentID,
			Round:        payload.Round,
			Applied:      applied,
			RowErrors:    rowErrors,
		}), nil
	})
}

func (s *RoundService) applyImportedRow(ctx context.Context, gamesToWin int, payload roundevents.ResultsImportRequestedPayloadV1, row parsers.ResultRow) error {
	match, err := s.repo.GetMatch(ctx, s.db, row.MatchID)
	if err != nil {
		return fmt.Errorf("line %d: match %s not found", row.Line, row.MatchID)
	}
	if match.TournamentID != payload.TournamentID || match.RoundNumber != payload.Round {
		return fmt.Errorf("line %d: match %s does not belong to round %d", row.Line, row.MatchID, payload.Round)
	}
	if match.Bye {
		return fmt.Errorf("line %d: match %s is a bye", row.Line, row.MatchID)
	}
	if err := validateScore(row.ScoreA, row.ScoreB, gamesToWin); err != nil {
		return fmt.Errorf("line %d: %v", row.Line, err)
	}

	match.ScoreA = row.ScoreA
	match.ScoreB = row.ScoreB
	match.Completed = true
	if row.ScoreA > row.ScoreB {
		match.WinnerTeam = match.TeamA
	} else {
		match.WinnerTeam = match.TeamB
	}
	return s.repo.UpdateMatchResult(ctx, s.db, match)
}
