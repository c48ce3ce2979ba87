package models

import "time"

type LotStatus string

const (
	LotStatusOpen    LotStatus = "open"
	LotStatusSettled LotStatus = "settled"
	LotStatusUnsold  LotStatus = "unsold"
)

// AuctionLot is the snapshot of an Approved pledge item taken when the
// auction opens. The current high bid is kept on the lot row so bid
// validation and acceptance can be a single compare-and-set under a row lock.
type AuctionLot struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PledgeItemID int       `json:"pledge_item_id" db:"pledge_item_id"`
	Status       LotStatus `json:"status" db:"status"`
	HighBidCents int64     `json:"high_bid_cents" db:"high_bid_cents"`
	HighBidderID *string   `json:"high_bidder_id,omitempty" db:"high_bidder_id"`
	WinnerID     *string   `json:"winner_id,omitempty" db:"winner_id"`
	WinningCents *int64    `json:"winning_cents,omitempty" db:"winning_cents"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Pledge *PledgeItem `json:"pledge,omitempty" db:"-"`
}

// Bid is a single offer on a lot. Bids are totally ordered by
// (amount desc, created_at asc) for settlement tie-breaks.
type Bid struct {
	ID          int       `json:"id" db:"id"`
	LotID       int       `json:"lot_id" db:"lot_id"`
	BidderID    string    `json:"bidder_id" db:"bidder_id"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
