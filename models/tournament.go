package models

import "time"

// TournamentStatus represents tournament lifecycle states, matching the ENUM in the DB.
type TournamentStatus string

const (
	StatusSignupOpen      TournamentStatus = "signup_open"
	StatusRoundInProgress TournamentStatus = "round_in_progress"
	StatusAuctionOpen     TournamentStatus = "auction_open"
	StatusSettled         TournamentStatus = "settled"
)

// Tournament is the root entity of the engine. RoundCount is derived once
// from the roster size when the tournament starts and is never recomputed.
// ShuffleSeed is fixed at creation so pairing generation stays reproducible.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	SeriesIndex     int              `json:"series_index" db:"series_index"`
	RosterSize      int              `json:"roster_size" db:"roster_size"`
	RoundCount      int              `json:"round_count" db:"round_count"`
	CurrentRound    int              `json:"current_round" db:"current_round"`
	Status          TournamentStatus `json:"status" db:"status"`
	ShuffleSeed     int64            `json:"-" db:"shuffle_seed"`
	AuctionOpenedAt *time.Time       `json:"auction_opened_at,omitempty" db:"auction_opened_at"`
	SettledAt       *time.Time       `json:"settled_at,omitempty" db:"settled_at"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`

	// Optional related entities (not mapped directly)
	Roster   []string      `json:"roster,omitempty" db:"-"`
	Rounds   []Round       `json:"rounds,omitempty" db:"-"`
	Matches  []Match       `json:"matches,omitempty" db:"-"`
	Balances []Balance     `json:"balances,omitempty" db:"-"`
	Lots     []*AuctionLot `json:"lots,omitempty" db:"-"`
}

// Balance is a derived view: the sum of ledger entries for one player within
// one tournament. It is never persisted.
type Balance struct {
	PlayerID     string `json:"player_id"`
	TournamentID int    `json:"tournament_id"`
	Cents        int64  `json:"cents"`
}
