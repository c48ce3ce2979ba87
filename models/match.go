package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusScheduled    MatchStatus = "scheduled"
	MatchStatusPlayed       MatchStatus = "played"
	MatchStatusAutoResolved MatchStatus = "auto_resolved"
	MatchStatusVoid         MatchStatus = "void"
)

// SetScore is the result of a single set: games won by side A and side B.
// A set always has a strict winner; tied sets are rejected at report time.
type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// SetScores is stored as a JSONB column.
type SetScores []SetScore

func (s SetScores) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *SetScores) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into SetScores", src)
	}
	return json.Unmarshal(b, s)
}

// Match pairs two players within a round. A bye match has no second side and
// is excluded from win/loss tallies, but still counts toward advancement.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	RoundID      int         `json:"round_id" db:"round_id"`
	P1ID         string      `json:"p1_id" db:"p1_id"`
	P2ID         *string     `json:"p2_id,omitempty" db:"p2_id"`
	IsBye        bool        `json:"is_bye" db:"is_bye"`
	Status       MatchStatus `json:"status" db:"status"`
	Sets         SetScores   `json:"sets,omitempty" db:"sets"`
	PlayedAt     *time.Time  `json:"played_at,omitempty" db:"played_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
