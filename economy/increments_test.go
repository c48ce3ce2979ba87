package economy

import "testing"

func TestMinIncrement(t *testing.T) {
	tests := []struct {
		amount int64
		want   int64
	}{
		{0, 100},
		{999, 100},
		// boundary values belong to the upper band
		{1000, 200},
		{2999, 200},
		{3000, 500},
		{5999, 500},
		{6000, 1000},
		{25000, 1000},
	}
	for _, tt := range tests {
		if got := MinIncrement(tt.amount); got != tt.want {
			t.Errorf("MinIncrement(%d) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestMinNextBid(t *testing.T) {
	tests := []struct {
		currentBid int64
		want       int64
	}{
		{0, 100},
		{800, 900},
		// topping 900 lands in the next band, so the 200 step applies:
		// 1000 is not enough, 1100 is the minimum
		{900, 1100},
		{999, 1199},
		{1000, 1200},
		{2900, 3400},
		{5800, 6300},
		{6000, 7000},
	}
	for _, tt := range tests {
		if got := MinNextBid(tt.currentBid); got != tt.want {
			t.Errorf("MinNextBid(%d) = %d, want %d", tt.currentBid, got, tt.want)
		}
	}
}

func TestMinNextBidSelfConsistent(t *testing.T) {
	// The minimum acceptable bid must itself satisfy the step rule for the
	// band it lands in, for any current high bid.
	for high := int64(0); high <= 8000; high += 50 {
		min := MinNextBid(high)
		if min < high+MinIncrement(min) {
			t.Errorf("MinNextBid(%d) = %d violates its own band step %d", high, min, MinIncrement(min))
		}
	}
}
