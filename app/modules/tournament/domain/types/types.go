package tournamenttypes

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RatingMode selects how the draft generator forms teams.
type RatingMode string

const (
	RatingModeRandom RatingMode = "random"
	RatingModeRating RatingMode = "rating"
)

// RatingAxis selects which of the two rating signals a tournament uses.
type RatingAxis string

const (
	RatingAxisA RatingAxis = "rating_a"
	RatingAxisB RatingAxis = "rating_b"
)

// ByePolicy controls what happens when a round has an odd team count.
type ByePolicy string

const (
	// ByePolicyAutoWin records the bye as an auto-win with zero games played.
	ByePolicyAutoWin ByePolicy = "auto_win"
	// ByePolicyReject makes pairing generation fail on odd team counts.
	ByePolicyReject ByePolicy = "reject"
)

// EliminationSchedule describes which round boundaries trigger cuts and how
// large they are.
type EliminationSchedule struct {
	// Rounds lists explicit round numbers that trigger a cut. When empty,
	// EveryN applies instead.
	Rounds []int `json:"rounds,omitempty"`
	// EveryN triggers a cut after every Nth round. Zero disables it.
	EveryN int `json:"every_n,omitempty"`
	// CutSize is how many worst-ranked participants an elimination removes.
	CutSize int `json:"cut_size"`
	// FinalistCutSize is the pool size at which the engine promotes finalists
	// instead of eliminating.
	FinalistCutSize int `json:"finalist_cut_size"`
}

// AppliesTo reports whether the given round number is an elimination boundary.
func (s EliminationSchedule) AppliesTo(round int) bool {
	if len(s.Rounds) > 0 {
		for _, r := range s.Rounds {
			if r == round {
				return true
			}
		}
		return false
	}
	if s.EveryN > 0 {
		return round%s.EveryN == 0
	}
	return false
}

// Tournament is the root entity of one competition. Mutated only through
// round transitions.
type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID           uuid.UUID           `bun:"id,pk,type:uuid" json:"id"`
	Name         string              `bun:"name,notnull" json:"name"`
	TeamSize     int                 `bun:"team_size,notnull" json:"team_size"`
	RatingMode   RatingMode          `bun:"rating_mode,notnull" json:"rating_mode"`
	RatingAxis   RatingAxis          `bun:"rating_axis,notnull" json:"rating_axis"`
	GamesToWin   int                 `bun:"games_to_win,notnull" json:"games_to_win"`
	ByePolicy    ByePolicy           `bun:"bye_policy,notnull" json:"bye_policy"`
	Schedule     EliminationSchedule `bun:"schedule,type:jsonb" json:"schedule"`
	CurrentRound int                 `bun:"current_round,notnull" json:"current_round"`
	Finished     bool                `bun:"finished,notnull,default:false" json:"finished"`
	CreatedAt    time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Participant is one individual in the original pool. The eliminated flag is
// the only field the engine mutates after creation; rows are never deleted so
// historical standings stay intact.
type Participant struct {
	bun.BaseModel `bun:"table:tournament_participants,alias:tp"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	TournamentID uuid.UUID `bun:"tournament_id,notnull,type:uuid" json:"tournament_id"`
	Username     string    `bun:"username,notnull" json:"username"`
	RatingA      int       `bun:"rating_a,notnull,default:0" json:"rating_a"`
	RatingB      int       `bun:"rating_b,notnull,default:0" json:"rating_b"`
	Eliminated   bool      `bun:"eliminated,notnull,default:false" json:"eliminated"`
	JoinedAt     time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp" json:"joined_at"`
}

// Rating returns the rating on the tournament's selected axis.
func (p Participant) Rating(axis RatingAxis) int {
	if axis == RatingAxisB {
		return p.RatingB
	}
	return p.RatingA
}

// StandingsEntry is the cumulative per-participant win/loss ledger, carried
// across rounds.
type StandingsEntry struct {
	bun.BaseModel `bun:"table:standings,alias:s"`

	TournamentID  uuid.UUID `bun:"tournament_id,pk,type:uuid" json:"tournament_id"`
	ParticipantID uuid.UUID `bun:"participant_id,pk,type:uuid" json:"participant_id"`
	Username      string    `bun:"username,notnull" json:"username"`
	Wins          int       `bun:"wins,notnull,default:0" json:"wins"`
	Losses        int       `bun:"losses,notnull,default:0" json:"losses"`
	GamesPlayed   int       `bun:"games_played,notnull,default:0" json:"games_played"`
}
