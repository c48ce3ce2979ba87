package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtclub/tournament-engine/live"
	"github.com/courtclub/tournament-engine/models"
	"github.com/courtclub/tournament-engine/repositories"
)

// MatchResult is what a result report returns: the stored match plus the
// credit entries it produced.
type MatchResult struct {
	Match          *models.Match         `json:"match"`
	SetsA          int                   `json:"sets_a"`
	SetsB          int                   `json:"sets_b"`
	CreditsAwarded []*models.LedgerEntry `json:"credits_awarded"`
}

type MatchService interface {
	ReportResult(ctx context.Context, matchID int, sets models.SetScores) (*MatchResult, error)
	AutoResolveMatch(ctx context.Context, matchID int, winnerID *string) (*MatchResult, error)
	// OverrideResult is the administrative correction path: it reverses the
	// prior ledger entries for the match with compensating entries, then
	// applies the corrected result. Past ledger rows are never mutated.
	OverrideResult(ctx context.Context, matchID int, sets models.SetScores) (*MatchResult, error)
}

type matchService struct {
	db         *sql.DB
	matchRepo  repositories.MatchRepository
	ledgerRepo repositories.LedgerRepository
	policy     EnginePolicy
	hub        *live.Hub
	logger     *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	ledgerRepo repositories.LedgerRepository,
	policy EnginePolicy,
	hub *live.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:         db,
		matchRepo:  matchRepo,
		ledgerRepo: ledgerRepo,
		policy:     policy,
		hub:        hub,
		logger:     logger,
	}
}

// ReportResult validates a reported set score sequence, marks the match
// Played and credits each side per set won, all in one transaction.
// Re-reporting an already played match is a conflict; corrections go through
// OverrideResult.
func (s *matchService) ReportResult(ctx context.Context, matchID int, sets models.SetScores) (*MatchResult, error) {
	setsA, setsB, err := tallySets(sets)
	if err != nil {
		return nil, err
	}

	result := &MatchResult{SetsA: setsA, SetsB: setsB}
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return translateRepoError(err)
		}
		if match.IsBye {
			return ErrMatchIsBye
		}
		if match.Status != models.MatchStatusScheduled {
			return ErrMatchAlreadyReported
		}

		playedAt := time.Now().UTC()
		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, models.MatchStatusPlayed, sets, playedAt); err != nil {
			return err
		}
		entries, err := s.creditSetWins(ctx, tx, match, setsA, setsB)
		if err != nil {
			return err
		}

		match.Status = models.MatchStatusPlayed
		match.Sets = sets
		match.PlayedAt = &playedAt
		result.Match = match
		result.CreditsAwarded = entries
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result reported",
		slog.Int("match_id", matchID),
		slog.Int("sets_a", setsA),
		slog.Int("sets_b", setsB))
	s.hub.BroadcastToRoom(live.TournamentRoom(result.Match.TournamentID), live.EventMatchPlayed, result)

	return result, nil
}

// AutoResolveMatch closes a match without a live score report (forfeit or
// timeout). The designated winner, if any, receives the configured default
// award; there are no computed set tallies.
func (s *matchService) AutoResolveMatch(ctx context.Context, matchID int, winnerID *string) (*MatchResult, error) {
	result := &MatchResult{}
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return translateRepoError(err)
		}
		if match.IsBye {
			return ErrMatchIsBye
		}
		if match.Status != models.MatchStatusScheduled {
			return ErrMatchAlreadyReported
		}
		if winnerID != nil && *winnerID != match.P1ID && *winnerID != derefString(match.P2ID) {
			return fmt.Errorf("%w: player %s is not in this match", ErrMatchNotFound, *winnerID)
		}

		resolvedAt := time.Now().UTC()
		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, models.MatchStatusAutoResolved, nil, resolvedAt); err != nil {
			return err
		}

		if winnerID != nil && s.policy.AutoResolveAwardCents != 0 {
			entry := &models.LedgerEntry{
				PlayerID:     *winnerID,
				TournamentID: match.TournamentID,
				DeltaCents:   s.policy.AutoResolveAwardCents,
				Reason:       models.ReasonAutoResolve,
				MatchID:      &match.ID,
			}
			if err := s.ledgerRepo.Insert(ctx, tx, entry); err != nil {
				return err
			}
			result.CreditsAwarded = append(result.CreditsAwarded, entry)
		}

		match.Status = models.MatchStatusAutoResolved
		match.PlayedAt = &resolvedAt
		result.Match = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match auto-resolved", slog.Int("match_id", matchID), slog.String("winner", derefString(winnerID)))
	return result, nil
}

func (s *matchService) OverrideResult(ctx context.Context, matchID int, sets models.SetScores) (*MatchResult, error) {
	setsA, setsB, err := tallySets(sets)
	if err != nil {
		return nil, err
	}

	result := &MatchResult{SetsA: setsA, SetsB: setsB}
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return translateRepoError(err)
		}
		if match.Status != models.MatchStatusPlayed && match.Status != models.MatchStatusAutoResolved {
			return ErrMatchNotCorrectable
		}

		// Reverse the net effect the match has had on each player so far.
		// Negating the per-player net (rather than each row) keeps repeated
		// overrides from double-reversing earlier corrections.
		prior, err := s.ledgerRepo.ListByMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		net := make(map[string]int64)
		order := make([]string, 0, 2)
		for _, entry := range prior {
			if _, seen := net[entry.PlayerID]; !seen {
				order = append(order, entry.PlayerID)
			}
			net[entry.PlayerID] += entry.DeltaCents
		}
		for _, playerID := range order {
			if net[playerID] == 0 {
				continue
			}
			compensation := &models.LedgerEntry{
				PlayerID:     playerID,
				TournamentID: match.TournamentID,
				DeltaCents:   -net[playerID],
				Reason:       models.ReasonAdjustment,
				MatchID:      &matchID,
			}
			if err := s.ledgerRepo.Insert(ctx, tx, compensation); err != nil {
				return err
			}
		}

		playedAt := time.Now().UTC()
		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, models.MatchStatusPlayed, sets, playedAt); err != nil {
			return err
		}
		entries, err := s.creditSetWins(ctx, tx, match, setsA, setsB)
		if err != nil {
			return err
		}

		match.Status = models.MatchStatusPlayed
		match.Sets = sets
		match.PlayedAt = &playedAt
		result.Match = match
		result.CreditsAwarded = entries
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result overridden", slog.Int("match_id", matchID))
	return result, nil
}

// creditSetWins appends one ledger entry per side that won at least one set.
// Losing a set carries no deduction; ordinary play is strictly additive.
func (s *matchService) creditSetWins(ctx context.Context, tx *sql.Tx, match *models.Match, setsA, setsB int) ([]*models.LedgerEntry, error) {
	entries := make([]*models.LedgerEntry, 0, 2)

	credit := func(playerID string, setsWon int) error {
		if setsWon == 0 {
			return nil
		}
		entry := &models.LedgerEntry{
			PlayerID:     playerID,
			TournamentID: match.TournamentID,
			DeltaCents:   int64(setsWon) * s.policy.SetWinAwardCents,
			Reason:       models.ReasonSetWin,
			MatchID:      &match.ID,
		}
		if err := s.ledgerRepo.Insert(ctx, tx, entry); err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	}

	if err := credit(match.P1ID, setsA); err != nil {
		return nil, err
	}
	if match.P2ID != nil {
		if err := credit(*match.P2ID, setsB); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// tallySets validates a reported score sequence and counts sets per side.
// The sequence must be non-empty and every set must have a strict winner.
func tallySets(sets models.SetScores) (setsA, setsB int, err error) {
	if len(sets) == 0 {
		return 0, 0, ErrSetScoresRequired
	}
	for i, set := range sets {
		if set.A < 0 || set.B < 0 {
			return 0, 0, fmt.Errorf("%w: set %d", ErrSetScoreNegative, i+1)
		}
		switch {
		case set.A > set.B:
			setsA++
		case set.B > set.A:
			setsB++
		default:
			return 0, 0, fmt.Errorf("%w: set %d is %d-%d", ErrSetScoreTied, i+1, set.A, set.B)
		}
	}
	return setsA, setsB, nil
}
