package models

import "time"

type PledgeCategory string

const (
	PledgeCategoryFood    PledgeCategory = "food"
	PledgeCategoryDrink   PledgeCategory = "drink"
	PledgeCategoryObject  PledgeCategory = "object"
	PledgeCategoryService PledgeCategory = "service"
	PledgeCategoryChaos   PledgeCategory = "chaos"
)

func (c PledgeCategory) Valid() bool {
	switch c {
	case PledgeCategoryFood, PledgeCategoryDrink, PledgeCategoryObject,
		PledgeCategoryService, PledgeCategoryChaos:
		return true
	}
	return false
}

type PledgeStatus string

const (
	PledgeStatusDraft    PledgeStatus = "draft"
	PledgeStatusApproved PledgeStatus = "approved"
	PledgeStatusHidden   PledgeStatus = "hidden"
)

// PledgeItem is a prize contributed by a player during the tournament.
// Only Approved items are eligible to become auction lots.
type PledgeItem struct {
	ID            int            `json:"id" db:"id"`
	OwnerID       string         `json:"owner_id" db:"owner_id"`
	TournamentID  int            `json:"tournament_id" db:"tournament_id"`
	RoundID       *int           `json:"round_id,omitempty" db:"round_id"`
	Title         string         `json:"title" db:"title"`
	Category      PledgeCategory `json:"category" db:"category"`
	Status        PledgeStatus   `json:"status" db:"status"`
	ValueMinCents *int64         `json:"value_min_cents,omitempty" db:"value_min_cents"`
	ValueMaxCents *int64         `json:"value_max_cents,omitempty" db:"value_max_cents"`
	PhotoKey      *string        `json:"-" db:"photo_key"`
	PhotoURL      *string        `json:"photo_url,omitempty" db:"-"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}
