package economy

// bidSteps are the increment steps in ascending band order.
var bidSteps = []int64{100, 200, 500, 1000}

// MinIncrement returns the bid step for the price band the given amount falls
// in. A boundary amount belongs to the upper band, so 1000 already takes the
// 200 step.
func MinIncrement(amountCents int64) int64 {
	switch {
	case amountCents < 1000:
		return 100
	case amountCents < 3000:
		return 200
	case amountCents < 6000:
		return 500
	default:
		return 1000
	}
}

// MinNextBid is the lowest acceptable bid on a lot with the given high bid.
// The step is keyed on the band the NEW bid lands in, not the band of the
// current high bid: topping a 900 high bid pushes the next bid into the
// [1000, 3000) band, so the 200 step applies and 1100 is the minimum. The
// first bid on a fresh lot must be at least the base step.
func MinNextBid(currentBidCents int64) int64 {
	for _, step := range bidSteps {
		candidate := currentBidCents + step
		if MinIncrement(candidate) == step {
			return candidate
		}
	}
	return currentBidCents + bidSteps[len(bidSteps)-1]
}
