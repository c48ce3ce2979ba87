package models

import "time"

// LedgerReason is the business reason for a credit movement.
type LedgerReason string

const (
	ReasonSetWin       LedgerReason = "set_win"
	ReasonAutoResolve  LedgerReason = "auto_resolve"
	ReasonAuctionDebit LedgerReason = "auction_debit"
	ReasonAdjustment   LedgerReason = "adjustment"
)

// LedgerEntry is a single row of the append-only credit ledger. A player's
// balance is always the sum of their entries within a tournament; no running
// total is stored anywhere. MatchID links entries produced by a match result
// so an administrative override can reverse exactly those rows with
// compensating entries.
type LedgerEntry struct {
	ID           int          `json:"id" db:"id"`
	PlayerID     string       `json:"player_id" db:"player_id"`
	TournamentID int          `json:"tournament_id" db:"tournament_id"`
	DeltaCents   int64        `json:"delta_cents" db:"delta_cents"`
	Reason       LedgerReason `json:"reason" db:"reason"`
	MatchID      *int         `json:"match_id,omitempty" db:"match_id"`
	LotID        *int         `json:"lot_id,omitempty" db:"lot_id"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}
