package tournamentservice

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderStandingsChart_ProducesPNG(t *testing.T) {
	tournamentID := uuid.New()

	repo := &FakeTournamentRepository{
		GetStandingsFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID) ([]tournamenttypes.StandingsEntry, error) {
			return []tournamenttypes.StandingsEntry{
				{TournamentID: tournamentID, ParticipantID: uuid.New(), Username: "alice", Wins: 3, Losses: 0},
				{TournamentID: tournamentID, ParticipantID: uuid.New(), Username: "bob", Wins: 2, Losses: 1},
				{TournamentID: tournamentID, ParticipantID: uuid.New(), Username: "carol", Wins: 1, Losses: 2},
			}, nil
		},
	}
	service := newTestService(repo, &FakeRoundRepository{})

	png, err := service.RenderStandingsChart(context.Background(), tournamentID)
	if err != nil {
		t.Fatalf("RenderStandingsChart() error = %v", err)
	}
	if !bytes.HasPrefix(png, pngSignature) {
		t.Errorf("chart output does not start with the PNG signature, got % x", png[:min(len(png), 8)])
	}
}

func TestRenderStandingsChart_RejectsEmptyStandings(t *testing.T) {
	repo := &FakeTournamentRepository{
		GetStandingsFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID) ([]tournamenttypes.StandingsEntry, error) {
			return nil, nil
		},
	}
	service := newTestService(repo, &FakeRoundRepository{})

	if _, err := service.RenderStandingsChart(context.Background(), uuid.New()); err == nil {
		t.Error("RenderStandingsChart() on empty standings: expected an error")
	}
}
