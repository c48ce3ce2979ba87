package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrNotEnoughPlayers = errors.New("scheduler: at least 2 players required")

// Pairing is one match slot within a round. A pairing with an empty P2 is a
// bye for P1.
type Pairing struct {
	P1    string
	P2    string
	IsBye bool
}

// Plan holds the full pairing schedule produced for a tournament.
type Plan struct {
	RoundCount int
	Rounds     [][]Pairing
	ByeCounts  map[string]int
}

// RoundCount derives the fixed number of rounds from the roster size. The
// count is decided once when the tournament starts and never recomputed.
func RoundCount(rosterSize int) int {
	switch {
	case rosterSize <= 12:
		return 3
	case rosterSize <= 18:
		return 4
	default:
		return 5
	}
}

// GenerateRounds produces the pairing schedule for every round of a
// tournament. Each round shuffles the roster with a Fisher–Yates permutation
// seeded from seed+roundIndex and pairs consecutive entries, so the result is
// fully determined by (seed, roster). An odd roster yields exactly one bye
// per round, assigned to a player with the fewest byes so far (best effort;
// a tiny roster relative to the round count can still force repeats).
func GenerateRounds(seed int64, playerIDs []string) (*Plan, error) {
	if len(playerIDs) < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrNotEnoughPlayers, len(playerIDs))
	}

	plan := &Plan{
		RoundCount: RoundCount(len(playerIDs)),
		ByeCounts:  make(map[string]int, len(playerIDs)),
	}

	for round := 1; round <= plan.RoundCount; round++ {
		rng := rand.New(rand.NewSource(seed + int64(round)))
		pairings := PairRound(rng, playerIDs, plan.ByeCounts)
		for _, p := range pairings {
			if p.IsBye {
				plan.ByeCounts[p.P1]++
			}
		}
		plan.Rounds = append(plan.Rounds, pairings)
	}
	return plan, nil
}

// PairRound pairs a single round. byeCounts carries how many byes each player
// has already received in this tournament; on odd rosters the leftover slot
// is swapped to a minimum-bye player before the bye is assigned. Also used
// directly when a round's matches are regenerated.
func PairRound(rng *rand.Rand, playerIDs []string, byeCounts map[string]int) []Pairing {
	order := make([]string, len(playerIDs))
	copy(order, playerIDs)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	if len(order)%2 == 1 {
		// The last entry after the shuffle takes the bye. If it already has
		// more byes than some other player, trade places with the first
		// minimum-bye player instead.
		last := len(order) - 1
		minIdx := last
		for i := 0; i < last; i++ {
			if byeCounts[order[i]] < byeCounts[order[minIdx]] {
				minIdx = i
			}
		}
		order[minIdx], order[last] = order[last], order[minIdx]
	}

	pairings := make([]Pairing, 0, (len(order)+1)/2)
	for i := 0; i+1 < len(order); i += 2 {
		pairings = append(pairings, Pairing{P1: order[i], P2: order[i+1]})
	}
	if len(order)%2 == 1 {
		pairings = append(pairings, Pairing{P1: order[len(order)-1], IsBye: true})
	}
	return pairings
}
