package roundservice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
)

func testRoster(teamCount int) *roundtypes.Roster {
	teams := make([]roundtypes.Team, teamCount)
	for i := range teams {
		member := roundtypes.TeamMember{ParticipantID: uuid.New(), Rating: 100 - i}
		teams[i] = roundtypes.Team{Index: i, Members: []roundtypes.TeamMember{member}, CaptainID: member.ParticipantID}
	}
	return &roundtypes.Roster{Teams: teams, Seed: 1}
}

func TestGeneratePairing_EveryTeamAppearsOnce(t *testing.T) {
	tournament := testTournament(1, tournamenttypes.RatingModeRandom)
	roster := testRoster(6)

	var savedPairing *roundtypes.Pairing
	var savedMatches []*roundtypes.Match
	repo := &FakeRoundRepository{
		GetRoundFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID, _ int) (*roundtypes.Round, error) {
			return &roundtypes.Round{TournamentID: tournament.ID, Number: 1, Status: roundtypes.StatusTeamsApproved, Roster: roster}, nil
		},
		UpdatePairingFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID, _ int, pairing *roundtypes.Pairing) (bool, error) {
			savedPairing = pairing
			return true, nil
		},
		ReplaceMatchesFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID, _ int, matches []*roundtypes.Match) error {
			savedMatches = matches
			return nil
		},
	}
	poolRepo := &FakePoolRepository{
		GetTournamentFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID) (*tournamenttypes.Tournament, error) {
			return tournament, nil
		},
	}
	service := newTestService(repo, poolRepo)

	result, err := service.GeneratePairing(context.Background(), roundevents.PairingRequestedPayloadV1{
		TournamentID: tournament.ID,
		Round:        1,
		Mode:         roundtypes.PairingModeRandom,
		Seed:         int64ptr(3),
	})
	if err != nil {
		t.Fatalf("GeneratePairing() error = %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("GeneratePairing() failed: %+v", result.Failure)
	}

	if got, want := len(savedPairing.Pairs), 3; got != want {
		t.Fatalf("pair count = %d, want %d", got, want)
	}
	seen := make(map[int]bool)
	for _, pair := range savedPairing.Pairs {
		if pair.Bye {
			t.Errorf("unexpected bye with even team count: %+v", pair)
		}
		for _, idx := range []int{pair.TeamA, pair.TeamB} {
			if seen[idx] {
				t.Errorf("team %d paired twice", idx)
			}
			seen[idx] = true
		}
	}
	if len(savedMatches) != len(savedPairing.Pairs) {
		t.Errorf("match count = %d, want %d", len(savedMatches), len(savedPairing.Pairs))
	}
}

func TestGeneratePairing_OddTeamCountDrawsBye(t *testing.T) {
	tournament := testTournament(1, tournamenttypes.RatingModeRandom)
	roster := testRoster(5)

	var savedMatches []*roundtypes.Match
	repo := &FakeRoundRepository{
		GetRoundFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID, _ int) (*roundtypes.Round, error) {
			return &roundtypes.Round{TournamentID: tournament.ID, Number: 1, Status: roundtypes.StatusTeamsApproved, Roster: roster}, nil
		},
		ReplaceMatchesFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID, _ int, matches []*roundtypes.Match) error {
			savedMatches = matches
			return nil
		},
	}
	poolRepo := &FakePoolRepository{
		GetTournamentFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID) (*tournamenttypes.Tournament, error) {
			return tournament, nil
		},
	}
	service := newTestService(repo, poolRepo)

	result, err := service.GeneratePairing(context.Background(), roundevents.PairingRequestedPayloadV1{
		TournamentID: tournament.ID,
		Round:        1,
		Mode:         roundtypes.PairingModeRandom,
		Seed:         int64ptr(9),
	})
	if err != nil {
		t.Fatalf("GeneratePairing() error = %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("GeneratePairing() failed: %+v", result.Failure)
	}

	byes := 0
	for _, m := range savedMatches {
		if !m.Bye {
			continue
		}
		byes++
		if !m.Completed {
			t.Error("bye match not created completed")
		}
		if m.WinnerTeam != m.TeamA {
			t.Errorf("bye winner = %d, want team A %d", m.WinnerTeam, m.TeamA)
		}
		if m.TeamB != -1 {
			t.Errorf("bye team B = %d, want -1", m.TeamB)
		}
		if m.ScoreA != 0 || m.ScoreB != 0 {
			t.Errorf("bye scores = %d:%d, want 0:0", m.ScoreA, m.ScoreB)
		}
	}
	if byes != 1 {
		t.Errorf("bye count = %d, want 1", byes)
	}
}

func TestGeneratePairing_AdjacentPairsBySummedRating(t *testing.T) {
	// Four teams with distinct ratings: adjacent mode must pair 1st with 2nd
	// and 3rd with 4th by strength.
	teams := []roundtypes.Team{
		{Index: 0, Members: []roundtypes.TeamMember{{ParticipantID: uuid.New(), Rating: 40}}},
		{Index: 1, Members: []roundtypes.TeamMember{{ParticipantID: uuid.New(), Rating: 100}}},
		{Index: 2, Members: []roundtypes.TeamMember{{ParticipantID: uuid.New(), Rating: 90}}},
		{Index: 3, Members: []roundtypes.TeamMember{{ParticipantID: uuid.New(), Rating: 50}}},
	}

	pairing := buildPairing(teams, roundtypes.PairingModeAdjacent, 0)

	if got, want := pairing.Pairs[0].TeamA, 1; got != want {
		t.Errorf("strongest pair team A = %d, want %d", got, want)
	}
	if got, want := pairing.Pairs[0].TeamB, 2; got != want {
		t.Errorf("strongest pair team B = %d, want %d", got, want)
	}
	if got, want := pairing.Pairs[1].TeamA, 3; got != want {
		t.Errorf("weakest pair team A = %d, want %d", got, want)
	}
	if got, want := pairing.Pairs[1].TeamB, 0; got != want {
		t.Errorf("weakest pair team B = %d, want %d", got, want)
	}
}

func TestGeneratePairing_Rejections(t *testing.T) {
	base := testTournament(1, tournamenttypes.RatingModeRandom)
	rejecting := *base
	rejecting.ByePolicy = tournamenttypes.ByePolicyReject

	tests := []struct {
		name       string
		tournament *tournamenttypes.Tournament
		round      *roundtypes.Round
		wantCode   string
	}{
		{
			name:       "roster not approved yet",
			tournament: base,
			round:      &roundtypes.Round{Number: 1, Status: roundtypes.StatusDraft, Roster: testRoster(4)},
			wantCode:   CodeRosterNotApproved,
		},
		{
			name:       "pairing already approved",
			tournament: base,
			round:      &roundtypes.Round{Number: 1, Status: roundtypes.StatusMatchesApproved, Roster: testRoster(4)},
			wantCode:   CodeRoundImmutable,
		},
		{
			name:       "odd teams under reject policy",
			tournament: &rejecting,
			round:      &roundtypes.Round{Number: 1, Status: roundtypes.StatusTeamsApproved, Roster: testRoster(5)},
			wantCode:   CodeOddTeamCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &FakeRoundRepository{
				GetRoundFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID, _ int) (*roundtypes.Round, error) {
					return tt.round, nil
				},
			}
			poolRepo := &FakePoolRepository{
				GetTournamentFunc: func(_ context.Context, _ bun.IDB, _ uuid.UUID) (*tournamenttypes.Tournament, error) {
					return tt.tournament, nil
				},
			}
			service := newTestService(repo, poolRepo)

			result, err := service.GeneratePairing(context.Background(), roundevents.PairingRequestedPayloadV1{
				TournamentID: tt.tournament.ID,
				Round:        1,
				Mode:         roundtypes.PairingModeRandom,
			})
			if err != nil {
				t.Fatalf("GeneratePairing() error = %v", err)
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
