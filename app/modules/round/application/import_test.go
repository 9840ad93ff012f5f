package roundservice

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
)

func TestImportResults_AppliesGoodRowsAndReportsBadOnes(t *testing.T) {
	tournament := testTournament(1, tournamenttypes.RatingModeRandom)
	good := &roundtypes.Match{ID: uuid.New(), TournamentID: tournament.ID, RoundNumber: 1, TeamA: 0, TeamB: 1, WinnerTeam: -1}
	bye := &roundtypes.Match{ID: uuid.New(), TournamentID: tournament.ID, RoundNumber: 1, TeamA: 2, TeamB: -1, Bye: true, Completed: true, WinnerTeam: 2}
	missing := uuid.New()

	sheet := fmt.Sprintf("match_id,score_a,score_b\n%s,2,1\n%s,2,0\n%s,2,0\n%s,9,9\n%s,0,2\n",
		good.ID, bye.ID, missing, good.ID, good.ID)

	matches := map[uuid.UUID]*roundtypes.Match{good.ID: good, bye.ID: bye}
	var updates int
	repo := &FakeRoundRepository{
		GetRoundFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID, _ int) (*roundtypes.Round, error) {
			return &roundtypes.Round{TournamentID: tournament.ID, Number: 1, Status: roundtypes.StatusMatchesApproved}, nil
		},
		GetMatchFunc: func(_ context.Context, _ bun.IDB, matchID uuid.UUID) (*roundtypes.Match, error) {
			if m, ok := matches[matchID]; ok {
				return m, nil
			}
			return nil, rounddb.ErrNotFound
		},
		UpdateMatchResultFunc: func(_ context.Context, _ bun.IDB, _ *roundtypes.Match) error {
			updates++
			return nil
		},
	}
	poolRepo := &FakePoolRepository{
		GetTournamentFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID) (*tournamenttypes.Tournament, error) {
			return tournament, nil
		},
	}
	service := newTestService(repo, poolRepo)

	result, err := service.ImportResults(context.Background(), roundevents.ResultsImportRequestedPayloadV1{
		TournamentID: tournament.ID,
		Round:        1,
		Filename:     "results.csv",
		Data:         []byte(sheet),
	})
	if err != nil {
		t.Fatalf("ImportResults() error = %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("ImportResults() failed: %+v", result.Failure)
	}

	// The first good row and the re-report land; the bye, the unknown match,
	// and the bad score are reported.
	if got, want := result.Success.Applied, 2; got != want {
		t.Errorf("applied = %d, want %d", got, want)
	}
	if got, want := len(result.Success.RowErrors), 3; got != want {
		t.Errorf("row errors = %d (%v), want %d", got, result.Success.RowErrors, want)
	}
	if updates != 2 {
		t.Errorf("match updates = %d, want 2", updates)
	}
}

func TestImportResults_Rejections(t *testing.T) {
	tournament := testTournament(1, tournamenttypes.RatingModeRandom)

	tests := []struct {
		name     string
		filename string
		data     string
		status   roundtypes.Status
		wantCode string
	}{
		{
			name:     "unsupported extension",
			filename: "results.pdf",
			data:     "whatever",
			status:   roundtypes.StatusMatchesApproved,
			wantCode: CodeImportRejected,
		},
		{
			name:     "empty sheet",
			filename: "results.csv",
			data:     "match_id,score_a,score_b\n",
			status:   roundtypes.StatusMatchesApproved,
			wantCode: CodeImportRejected,
		},
		{
			name:     "round not accepting results",
			filename: "results.csv",
			data:     fmt.Sprintf("match_id,score_a,score_b\n%s,2,0\n", uuid.New()),
			status:   roundtypes.StatusTeamsApproved,
			wantCode: CodeInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &FakeRoundRepository{
				GetRoundFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID, _ int) (*roundtypes.Round, error) {
					return &roundtypes.Round{TournamentID: tournament.ID, Number: 1, Status: tt.status}, nil
				},
			}
			poolRepo := &FakePoolRepository{
				GetTournamentFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID) (*tournamenttypes.Tournament, error) {
					return tournament, nil
				},
			}
			service := newTestService(repo, poolRepo)

			result, err := service.ImportResults(context.Background(), roundevents.ResultsImportRequestedPayloadV1{
				TournamentID: tournament.ID,
				Round:        1,
				Filename:     tt.filename,
				Data:         []byte(tt.data),
			})
			if err != nil {
				t.Fatalf("ImportResults() error = %v", err)
			}
			if !result.IsFailure() {
				t.Fatal("expected a failure result")
			}
			if result.Failure.Code != tt.wantCode {
				t.Errorf("failure code = %s, want %s", result.Failure.Code, tt.wantCode)
			}
		})
	}
}
