package services

// EnginePolicy carries the configurable credit and scheduling policy. The
// values are decided by configuration, not hardcoded, so deployments can tune
// the economy without touching engine code.
type EnginePolicy struct {
	// SetWinAwardCents is credited per set won in a reported result.
	SetWinAwardCents int64
	// AutoResolveAwardCents is the default credit outcome applied to the
	// designated winner of a forfeited or timed-out match.
	AutoResolveAwardCents int64
	// AllowNegativeBalances controls whether reported balances may go below
	// zero. Clamping is applied on read; the ledger itself is never rewritten.
	AllowNegativeBalances bool
	// MaxByesPerPlayer is the soft cap the scheduler aims for; small rosters
	// relative to the round count can still force repeats.
	MaxByesPerPlayer int
}

// DefaultEnginePolicy matches the documented defaults: 300 cents per set,
// one set's worth for an auto-resolved win, negative balances allowed.
func DefaultEnginePolicy() EnginePolicy {
	return EnginePolicy{
		SetWinAwardCents:      300,
		AutoResolveAwardCents: 300,
		AllowNegativeBalances: true,
		MaxByesPerPlayer:      2,
	}
}
