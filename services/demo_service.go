package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/courtclub/tournament-engine/models"
)

type SeedDemoInput struct {
	RosterSize  int   `json:"roster_size"`
	SeriesIndex int   `json:"series_index"`
	Seed        int64 `json:"seed"`
}

type DemoService interface {
	// SeedDemo creates a synthetic tournament for testing the client:
	// a started tournament with a demo roster plus a handful of pledge
	// items, some of them pre-approved.
	SeedDemo(ctx context.Context, input SeedDemoInput) (*models.Tournament, error)
}

type demoService struct {
	tournamentService TournamentService
	pledgeService     PledgeService
	logger            *slog.Logger
}

func NewDemoService(tournamentService TournamentService, pledgeService PledgeService, logger *slog.Logger) DemoService {
	return &demoService{
		tournamentService: tournamentService,
		pledgeService:     pledgeService,
		logger:            logger,
	}
}

var demoPledges = []struct {
	title    string
	category models.PledgeCategory
}{
	{"Homemade tortilla", models.PledgeCategoryFood},
	{"Bottle of vermouth", models.PledgeCategoryDrink},
	{"Mystery box", models.PledgeCategoryObject},
	{"One hour of coaching", models.PledgeCategoryService},
	{"Loser's trophy, engraved", models.PledgeCategoryChaos},
}

func (s *demoService) SeedDemo(ctx context.Context, input SeedDemoInput) (*models.Tournament, error) {
	rosterSize := input.RosterSize
	if rosterSize < 2 {
		rosterSize = 13
	}
	roster := make([]string, rosterSize)
	for i := range roster {
		roster[i] = fmt.Sprintf("demo-player-%d", i+1)
	}

	startInput := StartTournamentInput{
		SeriesIndex: input.SeriesIndex,
		Roster:      roster,
	}
	// A caller-provided seed pins both the pairing shuffle and the pledge
	// ownership draw, so a seeded demo replays identically.
	if input.Seed != 0 {
		startInput.ShuffleSeed = &input.Seed
	}
	tournament, err := s.tournamentService.StartTournament(ctx, startInput)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(input.Seed))
	for i, demo := range demoPledges {
		owner := roster[rng.Intn(len(roster))]
		pledge, err := s.pledgeService.CreatePledge(ctx, CreatePledgeInput{
			OwnerID:      owner,
			TournamentID: tournament.ID,
			Title:        demo.title,
			Category:     demo.category,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed demo pledge %q: %w", demo.title, err)
		}
		// Leave some pledges in draft so the approval flow can be exercised.
		if i%2 == 0 {
			if _, err := s.pledgeService.ApprovePledge(ctx, pledge.ID); err != nil {
				return nil, fmt.Errorf("failed to approve demo pledge %q: %w", demo.title, err)
			}
		}
	}

	s.logger.Info("demo tournament seeded",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("roster_size", rosterSize))
	return s.tournamentService.GetTournamentByID(ctx, tournament.ID)
}
