package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/courtclub/tournament-engine/economy"
	"github.com/courtclub/tournament-engine/live"
	"github.com/courtclub/tournament-engine/models"
	"github.com/courtclub/tournament-engine/repositories"
	"github.com/courtclub/tournament-engine/scheduler"
	"golang.org/x/sync/errgroup"
)

// seriesNames are the themed tournament names, picked by series index.
var seriesNames = []string{
	"Smash & Tapas",
	"The Golden Racket",
	"Midnight Tiebreak",
	"Court of Chaos",
	"The Pledge Cup",
	"Last Serve Standing",
}

type StartTournamentInput struct {
	Name        *string  `json:"name,omitempty"`
	SeriesIndex int      `json:"series_index"`
	Roster      []string `json:"roster"`
	// ShuffleSeed pins the pairing shuffle for reproducible runs (demo
	// seeding). Omitted, a random seed is drawn.
	ShuffleSeed *int64 `json:"shuffle_seed,omitempty"`
}

type TournamentService interface {
	StartTournament(ctx context.Context, input StartTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	CheckAdvanceRound(ctx context.Context, tournamentID int) (*models.Tournament, error)
	RegenerateMatches(ctx context.Context, roundID int) ([]models.Match, error)
	PlayerBalance(ctx context.Context, tournamentID int, playerID string) (*models.Balance, error)
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	matchRepo      repositories.MatchRepository
	ledgerRepo     repositories.LedgerRepository
	lotRepo        repositories.LotRepository
	policy         EnginePolicy
	hub            *live.Hub
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	ledgerRepo repositories.LedgerRepository,
	lotRepo repositories.LotRepository,
	policy EnginePolicy,
	hub *live.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
		ledgerRepo:     ledgerRepo,
		lotRepo:        lotRepo,
		policy:         policy,
		hub:            hub,
		logger:         logger,
	}
}

// StartTournament closes signup: it fixes the round count from the roster
// size, generates the full pairing plan from the stored shuffle seed and
// persists tournament, roster, rounds and matches in one transaction.
func (s *tournamentService) StartTournament(ctx context.Context, input StartTournamentInput) (*models.Tournament, error) {
	if len(input.Roster) < 2 {
		return nil, ErrRosterTooSmall
	}
	seen := make(map[string]struct{}, len(input.Roster))
	for _, playerID := range input.Roster {
		if _, dup := seen[playerID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrRosterDuplicate, playerID)
		}
		seen[playerID] = struct{}{}
	}

	name := themedName(input.SeriesIndex)
	if input.Name != nil && *input.Name != "" {
		name = *input.Name
	}

	seed := rand.Int63()
	if input.ShuffleSeed != nil {
		seed = *input.ShuffleSeed
	}

	tournament := &models.Tournament{
		Name:         name,
		SeriesIndex:  input.SeriesIndex,
		RosterSize:   len(input.Roster),
		RoundCount:   scheduler.RoundCount(len(input.Roster)),
		CurrentRound: 1,
		Status:       models.StatusRoundInProgress,
		ShuffleSeed:  seed,
	}

	plan, err := scheduler.GenerateRounds(tournament.ShuffleSeed, input.Roster)
	if err != nil {
		return nil, fmt.Errorf("failed to generate pairing plan: %w", err)
	}
	if over := overByeCap(plan.ByeCounts, s.policy.MaxByesPerPlayer); len(over) > 0 {
		s.logger.Warn("pairing plan exceeds the bye cap",
			slog.Int("max_byes", s.policy.MaxByesPerPlayer),
			slog.Any("players", over))
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.tournamentRepo.Create(ctx, tx, tournament); err != nil {
			return err
		}
		if err := s.tournamentRepo.AddRoster(ctx, tx, tournament.ID, input.Roster); err != nil {
			return err
		}
		for i, pairings := range plan.Rounds {
			round := &models.Round{
				TournamentID: tournament.ID,
				Index:        i + 1,
				Status:       models.RoundStatusPending,
			}
			if round.Index == 1 {
				round.Status = models.RoundStatusActive
			}
			if err := s.roundRepo.Create(ctx, tx, round); err != nil {
				return err
			}
			if err := s.insertPairings(ctx, tx, tournament.ID, round.ID, pairings); err != nil {
				return err
			}
			tournament.Rounds = append(tournament.Rounds, *round)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament started",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("roster_size", tournament.RosterSize),
		slog.Int("round_count", tournament.RoundCount))

	return s.GetTournamentByID(ctx, tournament.ID)
}

func (s *tournamentService) insertPairings(ctx context.Context, tx *sql.Tx, tournamentID, roundID int, pairings []scheduler.Pairing) error {
	for _, p := range pairings {
		match := &models.Match{
			TournamentID: tournamentID,
			RoundID:      roundID,
			P1ID:         p.P1,
			IsBye:        p.IsBye,
			Status:       models.MatchStatusScheduled,
		}
		if !p.IsBye {
			p2 := p.P2
			match.P2ID = &p2
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return err
		}
	}
	return nil
}

// GetTournamentByID loads the tournament with rounds, matches, balances and
// lots fetched in parallel.
func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		roster, err := s.tournamentRepo.ListRoster(gCtx, nil, id)
		if err != nil {
			return err
		}
		tournament.Roster = roster
		return nil
	})
	g.Go(func() error {
		rounds, err := s.roundRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return err
		}
		tournament.Rounds = rounds
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return err
		}
		tournament.Matches = dereferenceMatches(matches)
		return nil
	})
	g.Go(func() error {
		balances, err := s.ledgerRepo.SumAllByTournament(gCtx, nil, id)
		if err != nil {
			return err
		}
		for i := range balances {
			balances[i].Cents = economy.ClampBalance(balances[i].Cents, s.policy.AllowNegativeBalances)
		}
		tournament.Balances = balances
		return nil
	})
	g.Go(func() error {
		lots, err := s.lotRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return err
		}
		tournament.Lots = lots
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %d data: %w", id, err)
	}
	return tournament, nil
}

// PlayerBalance computes one player's balance as the sum of their ledger
// entries, clamped per policy.
func (s *tournamentService) PlayerBalance(ctx context.Context, tournamentID int, playerID string) (*models.Balance, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	sum, err := s.ledgerRepo.SumByPlayer(ctx, nil, playerID, tournamentID)
	if err != nil {
		return nil, err
	}
	return &models.Balance{
		PlayerID:     playerID,
		TournamentID: tournamentID,
		Cents:        economy.ClampBalance(sum, s.policy.AllowNegativeBalances),
	}, nil
}

// CheckAdvanceRound is the advancement gate. It is idempotent: if the current
// round is not complete the call is a no-op and the unchanged tournament is
// returned. The tournament row is locked for the whole check so concurrent
// polls serialize instead of double-advancing.
func (s *tournamentService) CheckAdvanceRound(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	var advancedTo int
	var auctionUnlocked bool

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		if tournament.Status != models.StatusRoundInProgress {
			// Redundant polls keep arriving after the final round; once the
			// tournament has left the round phase the gate is a no-op, not a
			// conflict.
			if tournament.Status == models.StatusAuctionOpen || tournament.Status == models.StatusSettled {
				return nil
			}
			return ErrTournamentNotInRounds
		}

		currentRound, err := s.roundRepo.GetByTournamentAndIndex(ctx, tx, tournamentID, tournament.CurrentRound)
		if err != nil {
			return translateRepoError(err)
		}
		matches, err := s.matchRepo.ListByRound(ctx, tx, currentRound.ID)
		if err != nil {
			return err
		}
		if !roundComplete(matches) {
			return nil // not ready yet, deliberately not an error
		}

		if err := s.roundRepo.UpdateStatus(ctx, tx, currentRound.ID, models.RoundStatusComplete); err != nil {
			return err
		}

		if tournament.CurrentRound >= tournament.RoundCount {
			auctionUnlocked = true
			return s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusAuctionOpen, tournament.CurrentRound)
		}

		nextIndex := tournament.CurrentRound + 1
		nextRound, err := s.roundRepo.GetByTournamentAndIndex(ctx, tx, tournamentID, nextIndex)
		if err != nil {
			return translateRepoError(err)
		}
		if err := s.roundRepo.UpdateStatus(ctx, tx, nextRound.ID, models.RoundStatusActive); err != nil {
			return err
		}

		// Matches normally exist from the start-time plan; regenerate only
		// when they are missing (e.g. all voided earlier), so retrying the
		// check stays safe.
		nextMatches, err := s.matchRepo.ListByRound(ctx, tx, nextRound.ID)
		if err != nil {
			return err
		}
		if !hasLiveMatches(nextMatches) {
			if err := s.generateRoundMatches(ctx, tx, tournament, nextRound); err != nil {
				return err
			}
		}

		advancedTo = nextIndex
		return s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusRoundInProgress, nextIndex)
	})
	if err != nil {
		return nil, err
	}

	if advancedTo > 0 {
		s.logger.Info("round advanced", slog.Int("tournament_id", tournamentID), slog.Int("round", advancedTo))
		s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.EventRoundAdvanced,
			map[string]int{"tournament_id": tournamentID, "round": advancedTo})
	}
	if auctionUnlocked {
		s.logger.Info("final round complete, auction unlocked", slog.Int("tournament_id", tournamentID))
		s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.EventAuctionOpened,
			map[string]int{"tournament_id": tournamentID})
	}

	return s.GetTournamentByID(ctx, tournamentID)
}

// RegenerateMatches voids the still-Scheduled matches of a round and replaces
// them with a fresh pairing over the players not already bound to a played or
// auto-resolved match. Played matches are never altered.
func (s *tournamentService) RegenerateMatches(ctx context.Context, roundID int) ([]models.Match, error) {
	var replacement []models.Match

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		round, err := s.roundRepo.GetByID(ctx, tx, roundID)
		if err != nil {
			return translateRepoError(err)
		}
		if round.Status == models.RoundStatusComplete {
			return ErrRoundNotActive
		}
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, round.TournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		if tournament.Status != models.StatusRoundInProgress {
			return ErrTournamentNotInRounds
		}

		existing, err := s.matchRepo.ListByRound(ctx, tx, roundID)
		if err != nil {
			return err
		}
		voided, err := s.matchRepo.VoidScheduledByRound(ctx, tx, roundID)
		if err != nil {
			return err
		}

		roster, err := s.tournamentRepo.ListRoster(ctx, tx, tournament.ID)
		if err != nil {
			return err
		}
		locked := make(map[string]struct{})
		for _, m := range existing {
			if m.Status == models.MatchStatusPlayed || m.Status == models.MatchStatusAutoResolved {
				locked[m.P1ID] = struct{}{}
				if m.P2ID != nil {
					locked[*m.P2ID] = struct{}{}
				}
			}
		}
		free := make([]string, 0, len(roster))
		for _, playerID := range roster {
			if _, isLocked := locked[playerID]; !isLocked {
				free = append(free, playerID)
			}
		}

		byeCounts, err := s.byeCountsBefore(ctx, tx, tournament.ID, round.Index)
		if err != nil {
			return err
		}

		// A distinct seed per regeneration keeps replacement pairings fresh
		// while staying a pure function of stored state.
		rng := rand.New(rand.NewSource(tournament.ShuffleSeed + int64(round.Index)*1_000 + int64(len(voided))))
		pairings := scheduler.PairRound(rng, free, byeCounts)
		if err := s.insertPairings(ctx, tx, tournament.ID, roundID, pairings); err != nil {
			return err
		}

		fresh, err := s.matchRepo.ListByRound(ctx, tx, roundID)
		if err != nil {
			return err
		}
		for _, m := range fresh {
			if m.Status == models.MatchStatusScheduled {
				replacement = append(replacement, *m)
			}
		}

		s.logger.Info("matches regenerated",
			slog.Int("round_id", roundID),
			slog.Int("voided", len(voided)),
			slog.Int("created", len(pairings)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replacement, nil
}

// byeCountsBefore tallies byes already assigned in rounds preceding the given
// one so regeneration keeps the bye balance.
func (s *tournamentService) byeCountsBefore(ctx context.Context, exec repositories.SQLExecutor, tournamentID, roundIndex int) (map[string]int, error) {
	rounds, err := s.roundRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, round := range rounds {
		if round.Index >= roundIndex {
			continue
		}
		matches, err := s.matchRepo.ListByRound(ctx, exec, round.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if m.IsBye && m.Status != models.MatchStatusVoid {
				counts[m.P1ID]++
			}
		}
	}
	return counts, nil
}

func (s *tournamentService) generateRoundMatches(ctx context.Context, tx *sql.Tx, tournament *models.Tournament, round *models.Round) error {
	roster, err := s.tournamentRepo.ListRoster(ctx, tx, tournament.ID)
	if err != nil {
		return err
	}
	byeCounts, err := s.byeCountsBefore(ctx, tx, tournament.ID, round.Index)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(tournament.ShuffleSeed + int64(round.Index)))
	return s.insertPairings(ctx, tx, tournament.ID, round.ID, scheduler.PairRound(rng, roster, byeCounts))
}

// roundComplete reports whether every match of a round has reached a state
// that unblocks advancement: played, auto-resolved, or a bye. Voided matches
// do not block either; their replacements do.
func roundComplete(matches []*models.Match) bool {
	if len(matches) == 0 {
		return false
	}
	resolved := 0
	for _, m := range matches {
		switch {
		case m.Status == models.MatchStatusVoid:
			continue
		case m.IsBye, m.Status == models.MatchStatusPlayed, m.Status == models.MatchStatusAutoResolved:
			resolved++
		default:
			return false
		}
	}
	return resolved > 0
}

func hasLiveMatches(matches []*models.Match) bool {
	for _, m := range matches {
		if m.Status != models.MatchStatusVoid {
			return true
		}
	}
	return false
}

// overByeCap lists players whose planned bye count exceeds the configured
// cap. Balancing is best effort: a tiny roster relative to the round count can
// force repeats, which is reported rather than rejected.
func overByeCap(byeCounts map[string]int, maxByes int) []string {
	if maxByes <= 0 {
		return nil
	}
	var over []string
	for playerID, count := range byeCounts {
		if count > maxByes {
			over = append(over, playerID)
		}
	}
	sort.Strings(over)
	return over
}

func themedName(seriesIndex int) string {
	if seriesIndex < 0 {
		seriesIndex = -seriesIndex
	}
	return seriesNames[seriesIndex%len(seriesNames)]
}
