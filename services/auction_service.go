package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtclub/tournament-engine/economy"
	"github.com/courtclub/tournament-engine/live"
	"github.com/courtclub/tournament-engine/models"
	"github.com/courtclub/tournament-engine/repositories"
)

// LotSettlement is the per-lot outcome of settleAuction.
type LotSettlement struct {
	LotID        int     `json:"lot_id"`
	PledgeItemID int     `json:"pledge_item_id"`
	WinnerID     *string `json:"winner_id,omitempty"`
	WinningCents *int64  `json:"winning_cents,omitempty"`
	Unsold       bool    `json:"unsold"`
}

type AuctionService interface {
	// StartAuction snapshots the Approved pledge items of a tournament as
	// open lots. The round gate must already have moved the tournament to
	// the auction phase.
	StartAuction(ctx context.Context, tournamentID int) ([]*models.AuctionLot, error)
	PlaceBid(ctx context.Context, lotID int, bidderID string, amountCents int64) (*models.Bid, error)
	// SettleAuction closes every open lot of the tournament in a single
	// transaction: all lots settle, or none do.
	SettleAuction(ctx context.Context, tournamentID int) ([]LotSettlement, error)
	ListLots(ctx context.Context, tournamentID int) ([]*models.AuctionLot, error)
}

type auctionService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	pledgeRepo     repositories.PledgeRepository
	lotRepo        repositories.LotRepository
	bidRepo        repositories.BidRepository
	ledgerRepo     repositories.LedgerRepository
	hub            *live.Hub
	logger         *slog.Logger
}

func NewAuctionService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	pledgeRepo repositories.PledgeRepository,
	lotRepo repositories.LotRepository,
	bidRepo repositories.BidRepository,
	ledgerRepo repositories.LedgerRepository,
	hub *live.Hub,
	logger *slog.Logger,
) AuctionService {
	return &auctionService{
		db:             db,
		tournamentRepo: tournamentRepo,
		pledgeRepo:     pledgeRepo,
		lotRepo:        lotRepo,
		bidRepo:        bidRepo,
		ledgerRepo:     ledgerRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *auctionService) StartAuction(ctx context.Context, tournamentID int) ([]*models.AuctionLot, error) {
	var lots []*models.AuctionLot

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		if tournament.Status != models.StatusAuctionOpen {
			return ErrAuctionNotOpen
		}
		existing, err := s.lotRepo.CountByTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrAuctionAlreadyStarted
		}

		approved := models.PledgeStatusApproved
		pledges, err := s.pledgeRepo.ListByTournamentAndStatus(ctx, tx, tournamentID, &approved)
		if err != nil {
			return err
		}
		if len(pledges) == 0 {
			return ErrAuctionNoApprovedItems
		}

		for _, pledge := range pledges {
			lot := &models.AuctionLot{
				TournamentID: tournamentID,
				PledgeItemID: pledge.ID,
				Status:       models.LotStatusOpen,
			}
			if err := s.lotRepo.Create(ctx, tx, lot); err != nil {
				return err
			}
			lot.Pledge = pledge
			lots = append(lots, lot)
		}
		return s.tournamentRepo.SetAuctionOpenedAt(ctx, tx, tournamentID, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("auction started", slog.Int("tournament_id", tournamentID), slog.Int("lots", len(lots)))
	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.EventAuctionOpened,
		map[string]interface{}{"tournament_id": tournamentID, "lots": len(lots)})

	return lots, nil
}

// PlaceBid validates and accepts a bid as one atomic compare-and-set: the lot
// row is locked, the increment check runs against the locked high bid, and
// the new high bid commits in the same transaction. Two equal bids racing on
// a stale high bid therefore cannot both be accepted.
func (s *auctionService) PlaceBid(ctx context.Context, lotID int, bidderID string, amountCents int64) (*models.Bid, error) {
	bid := &models.Bid{LotID: lotID, BidderID: bidderID, AmountCents: amountCents}

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		lot, err := s.lotRepo.GetByIDForUpdate(ctx, tx, lotID)
		if err != nil {
			return translateRepoError(err)
		}
		if lot.Status != models.LotStatusOpen {
			return ErrLotNotOpen
		}
		tournament, err := s.tournamentRepo.GetByID(ctx, tx, lot.TournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		if tournament.Status != models.StatusAuctionOpen || tournament.AuctionOpenedAt == nil {
			return ErrAuctionNotOpen
		}
		roster, err := s.tournamentRepo.ListRoster(ctx, tx, lot.TournamentID)
		if err != nil {
			return err
		}
		if !contains(roster, bidderID) {
			return ErrBidderNotInRoster
		}
		if lot.HighBidderID != nil && *lot.HighBidderID == bidderID {
			return ErrSelfOutbid
		}
		if minBid := economy.MinNextBid(lot.HighBidCents); amountCents < minBid {
			return fmt.Errorf("%w: minimum acceptable bid is %d", ErrBidBelowMinimum, minBid)
		}

		if err := s.bidRepo.Create(ctx, tx, bid); err != nil {
			return err
		}
		return s.lotRepo.UpdateHighBid(ctx, tx, lotID, amountCents, bidderID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bid accepted",
		slog.Int("lot_id", lotID),
		slog.String("bidder", bidderID),
		slog.Int64("amount_cents", amountCents))
	return bid, nil
}

func (s *auctionService) SettleAuction(ctx context.Context, tournamentID int) ([]LotSettlement, error) {
	var settlements []LotSettlement

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		if tournament.Status != models.StatusAuctionOpen || tournament.AuctionOpenedAt == nil {
			return ErrAuctionNotOpen
		}

		lots, err := s.lotRepo.ListByTournamentForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if len(lots) == 0 {
			return ErrAuctionNoApprovedItems
		}

		for _, lot := range lots {
			if lot.Status != models.LotStatusOpen {
				continue
			}
			bids, err := s.bidRepo.ListByLot(ctx, tx, lot.ID)
			if err != nil {
				return err
			}
			winner := pickLotWinner(bids)
			if winner == nil {
				if err := s.lotRepo.MarkUnsold(ctx, tx, lot.ID); err != nil {
					return err
				}
				// An unsold pledge drops back to draft so it can be
				// re-approved for a future listing.
				if err := s.pledgeRepo.UpdateStatus(ctx, tx, lot.PledgeItemID, models.PledgeStatusDraft); err != nil {
					return err
				}
				settlements = append(settlements, LotSettlement{
					LotID:        lot.ID,
					PledgeItemID: lot.PledgeItemID,
					Unsold:       true,
				})
				continue
			}

			if err := s.lotRepo.MarkSettled(ctx, tx, lot.ID, winner.BidderID, winner.AmountCents); err != nil {
				return err
			}
			debit := &models.LedgerEntry{
				PlayerID:     winner.BidderID,
				TournamentID: tournamentID,
				DeltaCents:   -winner.AmountCents,
				Reason:       models.ReasonAuctionDebit,
				LotID:        &lot.ID,
			}
			if err := s.ledgerRepo.Insert(ctx, tx, debit); err != nil {
				return err
			}
			settlements = append(settlements, LotSettlement{
				LotID:        lot.ID,
				PledgeItemID: lot.PledgeItemID,
				WinnerID:     &winner.BidderID,
				WinningCents: &winner.AmountCents,
			})
		}

		now := time.Now().UTC()
		if err := s.tournamentRepo.SetSettledAt(ctx, tx, tournamentID, now); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusSettled, tournament.CurrentRound)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("auction settled", slog.Int("tournament_id", tournamentID), slog.Int("lots", len(settlements)))
	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.EventAuctionSettled, settlements)

	return settlements, nil
}

func (s *auctionService) ListLots(ctx context.Context, tournamentID int) ([]*models.AuctionLot, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	lots, err := s.lotRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, lot := range lots {
		pledge, err := s.pledgeRepo.GetByID(ctx, nil, lot.PledgeItemID)
		if err != nil {
			return nil, translateRepoError(err)
		}
		lot.Pledge = pledge
	}
	return lots, nil
}

// pickLotWinner expects bids sorted highest amount first, earliest first on
// equal amounts, and returns the winning bid, or nil when there are none.
func pickLotWinner(bids []*models.Bid) *models.Bid {
	if len(bids) == 0 {
		return nil
	}
	winner := bids[0]
	for _, bid := range bids[1:] {
		if bid.AmountCents > winner.AmountCents ||
			(bid.AmountCents == winner.AmountCents && bid.CreatedAt.Before(winner.CreatedAt)) {
			winner = bid
		}
	}
	return winner
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
