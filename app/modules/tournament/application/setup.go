package tournamentservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	tournamentevents "github.com/trycohn/1337-sub004/app/modules/tournament/domain/events"
	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
	"github.com/trycohn/1337-sub004/internal/results"
)

// CreateTournament validates the configuration and creates the tournament
// with round 1 already open in DRAFT.
func (s *TournamentService) CreateTournament(ctx context.Context, payload tournamentevents.CreateRequestedPayloadV1) (CreateResult, error) {
	fail := func(reason string) CreateResult {
		return results.Fail[tournamentevents.CreatedPayloadV1](tournamentevents.OperationFailedPayloadV1{
			Operation: "CreateTournament",
			Reason:    reason,
		})
	}

	return withTelemetry(s, ctx, "CreateTournament", uuid.Nil, func(ctx context.Context) (CreateResult, error) {
		if err := validateConfig(payload); err != nil {
			return fail(err.Error()), nil
		}

		tournament := &tournamenttypes.Tournament{
			ID:           uuid.New(),
			Name:         strings.TrimSpace(payload.Name),
			TeamSize:     payload.TeamSize,
			RatingMode:   payload.RatingMode,
			RatingAxis:   payload.RatingAxis,
			GamesToWin:   payload.GamesToWin,
			ByePolicy:    payload.ByePolicy,
			Schedule:     payload.Schedule,
			CurrentRound: 1,
		}

		firstRound := &roundtypes.Round{
			ID:           uuid.New(),
			TournamentID: tournament.ID,
			Number:       1,
			Status:       roundtypes.StatusDraft,
		}

		err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := s.repo.CreateTournament(ctx, tx, tournament); err != nil {
				return err
			}
			return s.roundRepo.CreateRound(ctx, tx, firstRound)
		})
		if err != nil {
			return CreateResult{}, err
		}

		return results.Ok[tournamentevents.CreatedPayloadV1, tournamentevents.OperationFailedPayloadV1](tournamentevents.CreatedPayloadV1{
			Tournament: *tournament,
		}), nil
	})
}

// RegisterParticipants adds participants to the pool and seeds their
// standings rows. Allowed only while the current round is still in DRAFT, so
// waiting-list arrivals slot in between rounds, never mid-round.
func (s *TournamentService) RegisterParticipants(ctx context.Context, payload tournamentevents.ParticipantsRegisterRequestedPayloadV1) (RegisterResult, error) {
	fail := func(reason string) RegisterResult {
		return results.Fail[tournamentevents.ParticipantsRegisteredPayloadV1](tournamentevents.OperationFailedPayloadV1{
			TournamentID: payload.TournamentID,
			Operation:    "RegisterParticipants",
			Reason:       reason,
		})
	}

	return withTelemetry(s, ctx, "RegisterParticipants", payload.TournamentID, func(ctx context.Context) (RegisterResult, error) {
		if len(payload.Participants) == 0 {
			return fail("no participants to register"), nil
		}
		for _, p := range payload.Participants {
			if strings.TrimSpace(p.Username) == "" {
				return fail("participant username must not be empty"), nil
			}
		}

		s.locks.Lock(payload.TournamentID)
		defer s.locks.Unlock(payload.TournamentID)

		tournament, err := s.repo.GetTournament(ctx, s.db, payload.TournamentID)
		if err != nil {
			return RegisterResult{}, err
		}
		if tournament.Finished {
			return fail("tournament is finished"), nil
		}

		currentRound, err := s.roundRepo.GetRound(ctx, s.db, payload.TournamentID, tournament.CurrentRound)
		if err != nil {
			return RegisterResult{}, err
		}
		if currentRound.Status != roundtypes.StatusDraft {
			return fail(fmt.Sprintf("registration is open only while the current round is in draft, round %d is %s", currentRound.Number, currentRound.Status)), nil
		}

		participants := make([]*tournamenttypes.Participant, 0, len(payload.Participants))
		entries := make([]*tournamenttypes.StandingsEntry, 0, len(payload.Participants))
		for _, input := range payload.Participants {
			p := &tournamenttypes.Participant{
				ID:           uuid.New(),
				TournamentID: payload.TournamentID,
				Username:     strings.TrimSpace(input.Username),
				RatingA:      input.RatingA,
				RatingB:      input.RatingB,
			}
			participants = append(participants, p)
			entries = append(entries, &tournamenttypes.StandingsEntry{
				TournamentID:  payload.TournamentID,
				ParticipantID: p.ID,
				Username:      p.Username,
			})
		}

		err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := s.repo.CreateParticipants(ctx, tx, participants); err != nil {
				return err
			}
			return s.repo.InitStandings(ctx, tx, entries)
		})
		if err != nil {
			return RegisterResult{}, err
		}

		registered := make([]tournamenttypes.Participant, len(participants))
		for i, p := range participants {
			registered[i] = *p
		}

		return results.Ok[tournamentevents.ParticipantsRegisteredPayloadV1, tournamentevents.OperationFailedPayloadV1](tournamentevents.ParticipantsRegisteredPayloadV1{
			TournamentID: payload.TournamentID,
			Participants: registered,
		}), nil
	})
}

// GetTournament fetches one tournament.
func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*tournamenttypes.Tournament, error) {
	return s.repo.GetTournament(ctx, s.db, id)
}

func validateConfig(payload tournamentevents.CreateRequestedPayloadV1) error {
	if strings.TrimSpace(payload.Name) == "" {
		return fmt.Errorf("tournament name must not be empty")
	}
	if payload.TeamSize < 1 {
		return fmt.Errorf("team size must be at least 1, got %d", payload.TeamSize)
	}
	if payload.GamesToWin < 1 {
		return fmt.Errorf("games to win must be at least 1, got %d", payload.GamesToWin)
	}
	switch payload.RatingMode {
	case tournamenttypes.RatingModeRandom, tournamenttypes.RatingModeRating:
	default:
		return fmt.Errorf("unknown rating mode %q", payload.RatingMode)
	}
	switch payload.RatingAxis {
	case tournamenttypes.RatingAxisA, tournamenttypes.RatingAxisB:
	default:
		return fmt.Errorf("unknown rating axis %q", payload.RatingAxis)
	}
	switch payload.ByePolicy {
	case tournamenttypes.ByePolicyAutoWin, tournamenttypes.ByePolicyReject:
	default:
		return fmt.Errorf("unknown bye policy %q", payload.ByePolicy)
	}
	if payload.Schedule.CutSize < 0 || payload.Schedule.FinalistCutSize < 0 {
		return fmt.Errorf("cut sizes must not be negative")
	}
	return nil
}
