package models

import "time"

type RoundStatus string

const (
	RoundStatusPending  RoundStatus = "pending"
	RoundStatusActive   RoundStatus = "active"
	RoundStatusComplete RoundStatus = "complete"
)

// Round is one scheduling unit of a tournament. Index is 1-based and
// immutable once created.
type Round struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Index        int         `json:"index" db:"round_index"`
	Status       RoundStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
