package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/courtclub/tournament-engine/live"
	"github.com/courtclub/tournament-engine/models"
)

func matchWithStatus(status models.MatchStatus) *models.Match {
	return &models.Match{Status: status}
}

func byeMatch() *models.Match {
	return &models.Match{Status: models.MatchStatusScheduled, IsBye: true}
}

func TestRoundComplete(t *testing.T) {
	tests := []struct {
		name    string
		matches []*models.Match
		want    bool
	}{
		{
			name: "no matches",
			want: false,
		},
		{
			name: "all played",
			matches: []*models.Match{
				matchWithStatus(models.MatchStatusPlayed),
				matchWithStatus(models.MatchStatusPlayed),
			},
			want: true,
		},
		{
			name: "one still scheduled",
			matches: []*models.Match{
				matchWithStatus(models.MatchStatusPlayed),
				matchWithStatus(models.MatchStatusScheduled),
			},
			want: false,
		},
		{
			name: "bye counts as resolved",
			matches: []*models.Match{
				matchWithStatus(models.MatchStatusPlayed),
				byeMatch(),
			},
			want: true,
		},
		{
			name: "auto-resolved counts as resolved",
			matches: []*models.Match{
				matchWithStatus(models.MatchStatusAutoResolved),
			},
			want: true,
		},
		{
			name: "void matches are skipped",
			matches: []*models.Match{
				matchWithStatus(models.MatchStatusVoid),
				matchWithStatus(models.MatchStatusPlayed),
			},
			want: true,
		},
		{
			name: "only void matches never complete the round",
			matches: []*models.Match{
				matchWithStatus(models.MatchStatusVoid),
				matchWithStatus(models.MatchStatusVoid),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roundComplete(tt.matches); got != tt.want {
				t.Errorf("roundComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasLiveMatches(t *testing.T) {
	if hasLiveMatches(nil) {
		t.Error("hasLiveMatches(nil) = true")
	}
	onlyVoid := []*models.Match{matchWithStatus(models.MatchStatusVoid)}
	if hasLiveMatches(onlyVoid) {
		t.Error("hasLiveMatches() = true for a fully voided round")
	}
	mixed := []*models.Match{
		matchWithStatus(models.MatchStatusVoid),
		matchWithStatus(models.MatchStatusPlayed),
	}
	if !hasLiveMatches(mixed) {
		t.Error("hasLiveMatches() = false with a played match present")
	}
}

func TestOverByeCap(t *testing.T) {
	counts := map[string]int{"ana": 3, "ben": 1, "cleo": 4}

	got := overByeCap(counts, 2)
	want := []string{"ana", "cleo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("overByeCap() = %v, want %v", got, want)
	}
	if overByeCap(counts, 0) != nil {
		t.Error("a non-positive cap should disable the check")
	}
	if overByeCap(map[string]int{"ana": 2}, 2) != nil {
		t.Error("a count at the cap is not over it")
	}
}

func newStubTournamentService(t *testing.T, tournamentRepo *stubTournamentRepo, roundRepo *stubRoundRepo, matchRepo *stubMatchRepo) TournamentService {
	t.Helper()
	return NewTournamentService(
		newStubDB(t),
		tournamentRepo,
		roundRepo,
		matchRepo,
		&stubLedgerRepo{},
		&stubLotRepo{},
		DefaultEnginePolicy(),
		live.NewHub(),
		discardLogger(),
	)
}

func TestStartTournamentSeedReproducible(t *testing.T) {
	roster := []string{"ana", "ben", "cleo", "dia", "eli", "fran"}

	pairingsFor := func(seed int64) []string {
		matchRepo := &stubMatchRepo{}
		svc := newStubTournamentService(t, &stubTournamentRepo{}, &stubRoundRepo{}, matchRepo)
		if _, err := svc.StartTournament(context.Background(), StartTournamentInput{Roster: roster, ShuffleSeed: &seed}); err != nil {
			t.Fatalf("StartTournament() error = %v", err)
		}
		pairings := make([]string, 0, len(matchRepo.matches))
		for _, m := range matchRepo.matches {
			pairings = append(pairings, m.P1ID+"/"+derefString(m.P2ID))
		}
		return pairings
	}

	first := pairingsFor(42)
	if len(first) == 0 {
		t.Fatal("StartTournament() created no matches")
	}
	if second := pairingsFor(42); !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different pairings:\n%v\n%v", first, second)
	}
}

func TestCheckAdvanceRoundGate(t *testing.T) {
	ctx := context.Background()
	ben, dia := "ben", "dia"
	tournamentRepo := &stubTournamentRepo{
		tournament: &models.Tournament{
			ID:           7,
			RosterSize:   4,
			RoundCount:   2,
			CurrentRound: 1,
			Status:       models.StatusRoundInProgress,
		},
		roster: []string{"ana", "ben", "cleo", "dia"},
	}
	roundRepo := &stubRoundRepo{rounds: []*models.Round{
		{ID: 1, TournamentID: 7, Index: 1, Status: models.RoundStatusActive},
		{ID: 2, TournamentID: 7, Index: 2, Status: models.RoundStatusPending},
	}}
	matchRepo := &stubMatchRepo{matches: []*models.Match{
		{ID: 1, TournamentID: 7, RoundID: 1, P1ID: "ana", P2ID: &ben, Status: models.MatchStatusScheduled},
		{ID: 2, TournamentID: 7, RoundID: 2, P1ID: "cleo", P2ID: &dia, Status: models.MatchStatusScheduled},
	}}
	svc := newStubTournamentService(t, tournamentRepo, roundRepo, matchRepo)

	// Round 1 still has a scheduled match, so the gate must not move.
	got, err := svc.CheckAdvanceRound(ctx, 7)
	if err != nil {
		t.Fatalf("CheckAdvanceRound() error = %v", err)
	}
	if got.CurrentRound != 1 || got.Status != models.StatusRoundInProgress {
		t.Fatalf("incomplete round advanced: round %d, status %s", got.CurrentRound, got.Status)
	}

	// Resolving round 1 unlocks exactly one advancement.
	matchRepo.matches[0].Status = models.MatchStatusPlayed
	got, err = svc.CheckAdvanceRound(ctx, 7)
	if err != nil {
		t.Fatalf("CheckAdvanceRound() error = %v", err)
	}
	if got.CurrentRound != 2 || got.Status != models.StatusRoundInProgress {
		t.Fatalf("after round 1: round %d, status %s, want round 2 in progress", got.CurrentRound, got.Status)
	}
	if roundRepo.rounds[0].Status != models.RoundStatusComplete || roundRepo.rounds[1].Status != models.RoundStatusActive {
		t.Errorf("round statuses = %s/%s, want complete/active", roundRepo.rounds[0].Status, roundRepo.rounds[1].Status)
	}

	// Polling again with round 2 still open changes nothing.
	got, err = svc.CheckAdvanceRound(ctx, 7)
	if err != nil {
		t.Fatalf("CheckAdvanceRound() error = %v", err)
	}
	if got.CurrentRound != 2 {
		t.Fatalf("repeated poll advanced to round %d", got.CurrentRound)
	}

	// Completing the final round opens the auction instead of advancing.
	matchRepo.matches[1].Status = models.MatchStatusPlayed
	got, err = svc.CheckAdvanceRound(ctx, 7)
	if err != nil {
		t.Fatalf("CheckAdvanceRound() error = %v", err)
	}
	if got.Status != models.StatusAuctionOpen {
		t.Fatalf("after final round: status = %s, want %s", got.Status, models.StatusAuctionOpen)
	}

	// Polls keep arriving after the auction unlocks; the gate stays a no-op.
	got, err = svc.CheckAdvanceRound(ctx, 7)
	if err != nil {
		t.Fatalf("CheckAdvanceRound() after auction unlock: error = %v, want nil", err)
	}
	if got.Status != models.StatusAuctionOpen || got.CurrentRound != 2 {
		t.Errorf("post-auction poll changed the tournament: round %d, status %s", got.CurrentRound, got.Status)
	}
}

func TestThemedName(t *testing.T) {
	first := themedName(0)
	if first == "" {
		t.Fatal("themedName(0) returned an empty name")
	}
	if themedName(len(seriesNames)) != first {
		t.Error("series names should cycle after the list is exhausted")
	}
	if themedName(-3) != themedName(3) {
		t.Error("negative series index should mirror the positive one")
	}
}
