package roundtypes

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status is the round lifecycle state. Transitions are strictly ordered:
// DRAFT -> TEAMS_APPROVED -> MATCHES_APPROVED -> COMPLETED.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusTeamsApproved   Status = "TEAMS_APPROVED"
	StatusMatchesApproved Status = "MATCHES_APPROVED"
	StatusCompleted       Status = "COMPLETED"
)

// PairingMode selects how approved teams are paired into matches.
type PairingMode string

const (
	PairingModeRandom PairingMode = "random"
	// PairingModeAdjacent pairs adjacent-strength teams by summed rating.
	PairingModeAdjacent PairingMode = "adjacent"
)

// TeamMember is a roster slot. Rating is snapshotted at draft time on the
// tournament's selected axis.
type TeamMember struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Username      string    `json:"username"`
	Rating        int       `json:"rating"`
}

// Team is an ordered member list with a flagged captain.
type Team struct {
	Index     int          `json:"index"`
	Members   []TeamMember `json:"members"`
	CaptainID uuid.UUID    `json:"captain_id"`
}

// Rating returns the summed member rating.
func (t Team) Rating() int {
	total := 0
	for _, m := range t.Members {
		total += m.Rating
	}
	return total
}

// Roster is a round's team assignment. Freely regenerable while the round is
// in DRAFT; immutable afterwards.
type Roster struct {
	Teams []Team `json:"teams"`
	// Excluded holds the participants left out solely to keep team sizes
	// even. They return to the pool next round.
	Excluded []TeamMember `json:"excluded,omitempty"`
	Seed     int64        `json:"seed"`
}

// Pair is one scheduled match between two team indices. A bye pair has
// TeamB == -1.
type Pair struct {
	MatchID uuid.UUID `json:"match_id"`
	TeamA   int       `json:"team_a"`
	TeamB   int       `json:"team_b"`
	Bye     bool      `json:"bye,omitempty"`
}

// Pairing covers the approved roster: every team appears exactly once, byes
// allowed only on odd team counts.
type Pairing struct {
	Mode  PairingMode `json:"mode"`
	Pairs []Pair      `json:"pairs"`
}

// Meta records the outcome of the completion step.
type Meta struct {
	Finalists  []uuid.UUID `json:"finalists,omitempty"`
	Eliminated []uuid.UUID `json:"eliminated,omitempty"`
	ExtraRound bool        `json:"extra_round,omitempty"`
	// Winner is set when the final round completes.
	Winner *uuid.UUID `json:"winner,omitempty"`
}

// Round is one numbered cycle of a tournament. Exactly one round per
// tournament is mutable at any time; prior rounds are immutable history.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	TournamentID uuid.UUID `bun:"tournament_id,notnull,type:uuid" json:"tournament_id"`
	Number       int       `bun:"number,notnull" json:"number"`
	Status       Status    `bun:"status,notnull" json:"status"`
	Roster       *Roster   `bun:"roster,type:jsonb,nullzero" json:"roster,omitempty"`
	Pairing      *Pairing  `bun:"pairing,type:jsonb,nullzero" json:"pairing,omitempty"`
	Meta         *Meta     `bun:"meta,type:jsonb,nullzero" json:"meta,omitempty"`
	// Final marks the terminal round; its draft pool is the previous round's
	// finalists.
	Final     bool      `bun:"final,notnull,default:false" json:"final"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Match is one pairing's result record. Bye matches are created completed
// with zero scores and never touch standings.
type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	TournamentID uuid.UUID `bun:"tournament_id,notnull,type:uuid" json:"tournament_id"`
	RoundNumber  int       `bun:"round_number,notnull" json:"round_number"`
	TeamA        int       `bun:"team_a,notnull" json:"team_a"`
	TeamB        int       `bun:"team_b,notnull" json:"team_b"`
	Bye          bool      `bun:"bye,notnull,default:false" json:"bye"`
	ScoreA       int       `bun:"score_a,notnull,default:0" json:"score_a"`
	ScoreB       int       `bun:"score_b,notnull,default:0" json:"score_b"`
	Completed    bool      `bun:"completed,notnull,default:false" json:"completed"`
	// WinnerTeam is the winning team index, -1 while undecided.
	WinnerTeam int       `bun:"winner_team,notnull,default:-1" json:"winner_team"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Snapshot is the read model for one round.
type Snapshot struct {
	Round   int      `json:"round"`
	Status  Status   `json:"status"`
	Roster  *Roster  `json:"roster,omitempty"`
	Pairing *Pairing `json:"pairing,omitempty"`
	Matches []Match  `json:"matches,omitempty"`
	Meta    *Meta    `json:"meta,omitempty"`
	Final   bool     `json:"final"`
}
