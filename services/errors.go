package services

import "errors"

// Shared error values, grouped by how the HTTP layer maps them: validation
// errors reject the input, conflict errors reject the current state, and
// not-found errors reject the id. None of them leave partial state behind.
var (
	// Not found
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrPledgeNotFound     = errors.New("pledge item not found")
	ErrLotNotFound        = errors.New("auction lot not found")

	// Validation
	ErrRosterTooSmall          = errors.New("tournament roster requires at least 2 players")
	ErrRosterDuplicate         = errors.New("tournament roster contains duplicate player ids")
	ErrSetScoresRequired       = errors.New("at least one set score is required")
	ErrSetScoreTied            = errors.New("a set score must have a strict winner")
	ErrSetScoreNegative        = errors.New("set scores must be non-negative")
	ErrPledgeTitleRequired     = errors.New("pledge title is required")
	ErrPledgeInvalidCategory   = errors.New("pledge category is not one of food, drink, object, service, chaos")
	ErrPledgeInvalidValueRange = errors.New("pledge value estimate range is invalid")
	ErrBidBelowMinimum         = errors.New("bid is below the current high bid plus the minimum increment")
	ErrBidderNotInRoster       = errors.New("bidder is not part of the tournament roster")

	// Conflict (valid input, wrong state)
	ErrMatchAlreadyReported   = errors.New("match result has already been reported")
	ErrMatchIsBye             = errors.New("a bye match has no result to report")
	ErrMatchNotCorrectable    = errors.New("only played or auto-resolved matches can be corrected")
	ErrRoundNotActive         = errors.New("round is not active")
	ErrTournamentNotInRounds  = errors.New("tournament is not in a round phase")
	ErrAuctionNotOpen         = errors.New("auction is not open")
	ErrAuctionAlreadyStarted  = errors.New("auction lots have already been listed")
	ErrAuctionNoApprovedItems = errors.New("no approved pledge items to list")
	ErrSelfOutbid             = errors.New("bidder already holds the high bid on this lot")
	ErrLotNotOpen             = errors.New("auction lot is not open for bidding")
	ErrPledgeNotDraft         = errors.New("only draft pledge items can be approved")
)
