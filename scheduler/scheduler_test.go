package scheduler

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

func demoRoster(n int) []string {
	roster := make([]string, n)
	for i := range roster {
		roster[i] = fmt.Sprintf("player-%02d", i+1)
	}
	return roster
}

func TestRoundCount(t *testing.T) {
	tests := []struct {
		rosterSize int
		want       int
	}{
		{2, 3},
		{12, 3},
		{13, 4},
		{18, 4},
		{19, 5},
		{40, 5},
	}
	for _, tt := range tests {
		if got := RoundCount(tt.rosterSize); got != tt.want {
			t.Errorf("RoundCount(%d) = %d, want %d", tt.rosterSize, got, tt.want)
		}
	}
}

func TestRoundCountMonotonic(t *testing.T) {
	prev := RoundCount(2)
	for size := 3; size <= 64; size++ {
		cur := RoundCount(size)
		if cur < prev {
			t.Fatalf("RoundCount(%d) = %d dropped below RoundCount(%d) = %d", size, cur, size-1, prev)
		}
		prev = cur
	}
}

func TestGenerateRoundsRejectsTinyRoster(t *testing.T) {
	for _, roster := range [][]string{nil, {}, {"solo"}} {
		if _, err := GenerateRounds(42, roster); err == nil {
			t.Errorf("GenerateRounds with %d players: expected error", len(roster))
		}
	}
}

func TestGenerateRoundsDeterministic(t *testing.T) {
	roster := demoRoster(14)

	a, err := GenerateRounds(99, roster)
	if err != nil {
		t.Fatalf("GenerateRounds: %v", err)
	}
	b, err := GenerateRounds(99, roster)
	if err != nil {
		t.Fatalf("GenerateRounds: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("same seed and roster produced different plans")
	}

	c, err := GenerateRounds(100, roster)
	if err != nil {
		t.Fatalf("GenerateRounds: %v", err)
	}
	if reflect.DeepEqual(a.Rounds, c.Rounds) {
		t.Error("different seeds produced identical plans")
	}
}

func TestGenerateRoundsEvenRoster(t *testing.T) {
	roster := demoRoster(12)

	plan, err := GenerateRounds(7, roster)
	if err != nil {
		t.Fatalf("GenerateRounds: %v", err)
	}
	if plan.RoundCount != 3 || len(plan.Rounds) != 3 {
		t.Fatalf("expected 3 rounds, got count=%d len=%d", plan.RoundCount, len(plan.Rounds))
	}

	for i, round := range plan.Rounds {
		if len(round) != 6 {
			t.Errorf("round %d: expected 6 pairings, got %d", i+1, len(round))
		}
		for _, p := range round {
			if p.IsBye {
				t.Errorf("round %d: bye pairing on an even roster", i+1)
			}
		}
	}
	if len(plan.ByeCounts) != 0 {
		t.Errorf("even roster accumulated bye counts: %v", plan.ByeCounts)
	}
}

func TestGenerateRoundsOddRoster(t *testing.T) {
	roster := demoRoster(13)

	plan, err := GenerateRounds(7, roster)
	if err != nil {
		t.Fatalf("GenerateRounds: %v", err)
	}
	if plan.RoundCount != 4 {
		t.Fatalf("expected 4 rounds for 13 players, got %d", plan.RoundCount)
	}

	for i, round := range plan.Rounds {
		byes := 0
		seen := make(map[string]bool, 13)
		for _, p := range round {
			if seen[p.P1] {
				t.Errorf("round %d: player %s appears twice", i+1, p.P1)
			}
			seen[p.P1] = true
			if p.IsBye {
				byes++
				if p.P2 != "" {
					t.Errorf("round %d: bye pairing has an opponent", i+1)
				}
				continue
			}
			if seen[p.P2] {
				t.Errorf("round %d: player %s appears twice", i+1, p.P2)
			}
			seen[p.P2] = true
		}
		if byes != 1 {
			t.Errorf("round %d: expected exactly 1 bye, got %d", i+1, byes)
		}
		if len(seen) != 13 {
			t.Errorf("round %d: expected every player scheduled, got %d", i+1, len(seen))
		}
	}
}

func TestGenerateRoundsSpreadsByes(t *testing.T) {
	// With 4 rounds and 13 players the minimum-bye rule must hand each bye
	// to a fresh player, so nobody collects more than one.
	plan, err := GenerateRounds(1234, demoRoster(13))
	if err != nil {
		t.Fatalf("GenerateRounds: %v", err)
	}

	total := 0
	for player, count := range plan.ByeCounts {
		total += count
		if count > 1 {
			t.Errorf("player %s received %d byes", player, count)
		}
	}
	if total != plan.RoundCount {
		t.Errorf("expected %d byes in total, got %d", plan.RoundCount, total)
	}
}

func TestPairRoundPrefersMinByePlayer(t *testing.T) {
	roster := demoRoster(5)
	byeCounts := map[string]int{
		"player-01": 1,
		"player-02": 1,
		"player-03": 1,
		"player-04": 1,
		// player-05 has none and must take the bye regardless of shuffle.
	}

	for seed := int64(0); seed < 20; seed++ {
		pairings := PairRound(rand.New(rand.NewSource(seed)), roster, byeCounts)
		bye := pairings[len(pairings)-1]
		if !bye.IsBye {
			t.Fatalf("seed %d: last pairing is not the bye", seed)
		}
		if bye.P1 != "player-05" {
			t.Errorf("seed %d: bye went to %s, want player-05", seed, bye.P1)
		}
	}
}
