package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courtclub/tournament-engine/live"
	"github.com/courtclub/tournament-engine/models"
)

func auctionOpenTournament() *stubTournamentRepo {
	openedAt := time.Date(2026, 8, 1, 21, 0, 0, 0, time.UTC)
	return &stubTournamentRepo{
		tournament: &models.Tournament{
			ID:              7,
			RosterSize:      3,
			RoundCount:      3,
			CurrentRound:    3,
			Status:          models.StatusAuctionOpen,
			AuctionOpenedAt: &openedAt,
		},
		roster: []string{"ana", "ben", "cleo"},
	}
}

func newStubAuctionService(t *testing.T, tournamentRepo *stubTournamentRepo, pledgeRepo *stubPledgeRepo, lotRepo *stubLotRepo, bidRepo *stubBidRepo, ledgerRepo *stubLedgerRepo) AuctionService {
	t.Helper()
	return NewAuctionService(newStubDB(t), tournamentRepo, pledgeRepo, lotRepo, bidRepo, ledgerRepo, live.NewHub(), discardLogger())
}

func TestPlaceBidRequiresBandStep(t *testing.T) {
	ctx := context.Background()
	cleo := "cleo"
	lotRepo := &stubLotRepo{lots: []*models.AuctionLot{
		{ID: 1, TournamentID: 7, PledgeItemID: 11, Status: models.LotStatusOpen, HighBidCents: 900, HighBidderID: &cleo},
	}}
	bidRepo := &stubBidRepo{}
	svc := newStubAuctionService(t, auctionOpenTournament(), &stubPledgeRepo{}, lotRepo, bidRepo, &stubLedgerRepo{})

	// 1000 lands in the 200-step band, so a 100 step over 900 is short.
	if _, err := svc.PlaceBid(ctx, 1, "ana", 1000); !errors.Is(err, ErrBidBelowMinimum) {
		t.Fatalf("PlaceBid(1000) error = %v, want ErrBidBelowMinimum", err)
	}
	if len(bidRepo.bids) != 0 {
		t.Fatalf("rejected bid was stored")
	}

	bid, err := svc.PlaceBid(ctx, 1, "ana", 1100)
	if err != nil {
		t.Fatalf("PlaceBid(1100) error = %v", err)
	}
	if bid.AmountCents != 1100 || bid.BidderID != "ana" {
		t.Errorf("accepted bid = %+v", bid)
	}
	if lotRepo.lots[0].HighBidCents != 1100 || derefString(lotRepo.lots[0].HighBidderID) != "ana" {
		t.Errorf("lot high bid = %d by %s, want 1100 by ana",
			lotRepo.lots[0].HighBidCents, derefString(lotRepo.lots[0].HighBidderID))
	}
}

func TestSettleAuctionDebitsWinnerOnly(t *testing.T) {
	ctx := context.Background()
	tournamentRepo := auctionOpenTournament()
	pledgeRepo := &stubPledgeRepo{pledges: []*models.PledgeItem{
		{ID: 11, TournamentID: 7, OwnerID: "cleo", Title: "Mystery box", Status: models.PledgeStatusApproved},
		{ID: 12, TournamentID: 7, OwnerID: "ana", Title: "Bottle of vermouth", Status: models.PledgeStatusApproved},
	}}
	lotRepo := &stubLotRepo{lots: []*models.AuctionLot{
		{ID: 1, TournamentID: 7, PledgeItemID: 11, Status: models.LotStatusOpen},
		{ID: 2, TournamentID: 7, PledgeItemID: 12, Status: models.LotStatusOpen},
	}}
	base := time.Date(2026, 8, 1, 21, 30, 0, 0, time.UTC)
	bidRepo := &stubBidRepo{bids: []*models.Bid{
		{ID: 1, LotID: 1, BidderID: "ana", AmountCents: 1500, CreatedAt: base},
		{ID: 2, LotID: 1, BidderID: "ben", AmountCents: 800, CreatedAt: base.Add(time.Minute)},
	}}
	ledgerRepo := &stubLedgerRepo{}
	svc := newStubAuctionService(t, tournamentRepo, pledgeRepo, lotRepo, bidRepo, ledgerRepo)

	settlements, err := svc.SettleAuction(ctx, 7)
	if err != nil {
		t.Fatalf("SettleAuction() error = %v", err)
	}
	if len(settlements) != 2 {
		t.Fatalf("settlements = %d, want 2", len(settlements))
	}

	// Only the winning bid is debited; losing bidders are untouched.
	if len(ledgerRepo.entries) != 1 {
		t.Fatalf("ledger entries = %d, want exactly the winner's debit", len(ledgerRepo.entries))
	}
	debit := ledgerRepo.entries[0]
	if debit.PlayerID != "ana" || debit.DeltaCents != -1500 || debit.Reason != models.ReasonAuctionDebit {
		t.Errorf("debit = %s %d %s, want ana -1500 %s", debit.PlayerID, debit.DeltaCents, debit.Reason, models.ReasonAuctionDebit)
	}
	if debit.LotID == nil || *debit.LotID != 1 {
		t.Error("debit is not tied to the settled lot")
	}
	if benSum, _ := ledgerRepo.SumByPlayer(ctx, nil, "ben", 7); benSum != 0 {
		t.Errorf("losing bidder was debited %d", benSum)
	}

	if lotRepo.lots[0].Status != models.LotStatusSettled || derefString(lotRepo.lots[0].WinnerID) != "ana" {
		t.Errorf("lot 1 = %s won by %s, want settled by ana", lotRepo.lots[0].Status, derefString(lotRepo.lots[0].WinnerID))
	}
	if lotRepo.lots[1].Status != models.LotStatusUnsold {
		t.Errorf("bidless lot status = %s, want %s", lotRepo.lots[1].Status, models.LotStatusUnsold)
	}
	// The unsold pledge drops back to draft for a future listing.
	if pledgeRepo.pledges[1].Status != models.PledgeStatusDraft {
		t.Errorf("unsold pledge status = %s, want %s", pledgeRepo.pledges[1].Status, models.PledgeStatusDraft)
	}

	if tournamentRepo.tournament.Status != models.StatusSettled || tournamentRepo.tournament.SettledAt == nil {
		t.Errorf("tournament = %s (settled_at set: %v), want settled with a timestamp",
			tournamentRepo.tournament.Status, tournamentRepo.tournament.SettledAt != nil)
	}
}

func TestPickLotWinner(t *testing.T) {
	base := time.Date(2026, 8, 1, 19, 0, 0, 0, time.UTC)

	bidAt := func(bidder string, amount int64, offset time.Duration) *models.Bid {
		return &models.Bid{BidderID: bidder, AmountCents: amount, CreatedAt: base.Add(offset)}
	}

	t.Run("no bids", func(t *testing.T) {
		if got := pickLotWinner(nil); got != nil {
			t.Errorf("pickLotWinner(nil) = %+v, want nil", got)
		}
	})

	t.Run("highest amount wins", func(t *testing.T) {
		bids := []*models.Bid{
			bidAt("ana", 500, 0),
			bidAt("ben", 1200, time.Minute),
			bidAt("cleo", 800, 2*time.Minute),
		}
		winner := pickLotWinner(bids)
		if winner == nil || winner.BidderID != "ben" {
			t.Errorf("winner = %+v, want ben", winner)
		}
	})

	t.Run("tie goes to the earlier bid", func(t *testing.T) {
		bids := []*models.Bid{
			bidAt("ana", 1200, time.Minute),
			bidAt("ben", 1200, 0),
			bidAt("cleo", 900, 2*time.Minute),
		}
		winner := pickLotWinner(bids)
		if winner == nil || winner.BidderID != "ben" {
			t.Errorf("winner = %+v, want ben", winner)
		}
	})
}

func TestContains(t *testing.T) {
	roster := []string{"ana", "ben", "cleo"}
	if !contains(roster, "ben") {
		t.Error("contains() missed a roster member")
	}
	if contains(roster, "dora") {
		t.Error("contains() matched a non-member")
	}
	if contains(nil, "ana") {
		t.Error("contains() matched against an empty list")
	}
}
