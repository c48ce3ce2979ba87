package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/courtclub/tournament-engine/models"
	"github.com/courtclub/tournament-engine/repositories"
)

// The services only ever begin, commit and roll back transactions against the
// database handle in these tests; all data access goes through the in-memory
// repositories below. A no-op driver is enough to satisfy runInTx.

type noopDriver struct{}

type noopConn struct{}

type noopTx struct{}

func (noopDriver) Open(string) (driver.Conn, error)  { return noopConn{}, nil }
func (noopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (noopConn) Close() error                        { return nil }
func (noopConn) Begin() (driver.Tx, error)           { return noopTx{}, nil }
func (noopTx) Commit() error                         { return nil }
func (noopTx) Rollback() error                       { return nil }

func init() { sql.Register("enginestub", noopDriver{}) }

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("enginestub", "")
	if err != nil {
		t.Fatalf("failed to open stub database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubTournamentRepo struct {
	tournament *models.Tournament
	roster     []string
}

func (r *stubTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = 1
	t.CreatedAt = time.Now()
	copied := *t
	r.tournament = &copied
	return nil
}

func (r *stubTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	if r.tournament == nil || r.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *r.tournament
	return &copied, nil
}

func (r *stubTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *stubTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus, currentRound int) error {
	if r.tournament == nil || r.tournament.ID != id {
		return repositories.ErrTournamentNotFound
	}
	r.tournament.Status = status
	r.tournament.CurrentRound = currentRound
	return nil
}

func (r *stubTournamentRepo) SetAuctionOpenedAt(_ context.Context, _ repositories.SQLExecutor, id int, openedAt time.Time) error {
	if r.tournament == nil || r.tournament.ID != id {
		return repositories.ErrTournamentNotFound
	}
	r.tournament.AuctionOpenedAt = &openedAt
	return nil
}

func (r *stubTournamentRepo) SetSettledAt(_ context.Context, _ repositories.SQLExecutor, id int, settledAt time.Time) error {
	if r.tournament == nil || r.tournament.ID != id {
		return repositories.ErrTournamentNotFound
	}
	r.tournament.SettledAt = &settledAt
	return nil
}

func (r *stubTournamentRepo) AddRoster(_ context.Context, _ repositories.SQLExecutor, _ int, playerIDs []string) error {
	r.roster = append([]string(nil), playerIDs...)
	return nil
}

func (r *stubTournamentRepo) ListRoster(_ context.Context, _ repositories.SQLExecutor, _ int) ([]string, error) {
	return r.roster, nil
}

type stubRoundRepo struct {
	rounds []*models.Round
}

func (r *stubRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.Round) error {
	round.ID = len(r.rounds) + 1
	copied := *round
	r.rounds = append(r.rounds, &copied)
	return nil
}

func (r *stubRoundRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Round, error) {
	for _, round := range r.rounds {
		if round.ID == id {
			copied := *round
			return &copied, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (r *stubRoundRepo) GetByTournamentAndIndex(_ context.Context, _ repositories.SQLExecutor, tournamentID, index int) (*models.Round, error) {
	for _, round := range r.rounds {
		if round.TournamentID == tournamentID && round.Index == index {
			copied := *round
			return &copied, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (r *stubRoundRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Round, error) {
	rounds := make([]models.Round, 0, len(r.rounds))
	for _, round := range r.rounds {
		if round.TournamentID == tournamentID {
			rounds = append(rounds, *round)
		}
	}
	return rounds, nil
}

func (r *stubRoundRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.RoundStatus) error {
	for _, round := range r.rounds {
		if round.ID == id {
			round.Status = status
			return nil
		}
	}
	return repositories.ErrRoundNotFound
}

type stubMatchRepo struct {
	matches []*models.Match
}

func (r *stubMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = len(r.matches) + 1
	copied := *match
	r.matches = append(r.matches, &copied)
	return nil
}

func (r *stubMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	for _, match := range r.matches {
		if match.ID == id {
			copied := *match
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *stubMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *stubMatchRepo) ListByRound(_ context.Context, _ repositories.SQLExecutor, roundID int) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for _, match := range r.matches {
		if match.RoundID == roundID {
			matches = append(matches, match)
		}
	}
	return matches, nil
}

func (r *stubMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for _, match := range r.matches {
		if match.TournamentID == tournamentID {
			matches = append(matches, match)
		}
	}
	return matches, nil
}

func (r *stubMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus, sets models.SetScores, playedAt time.Time) error {
	for _, match := range r.matches {
		if match.ID == id {
			match.Status = status
			match.Sets = sets
			match.PlayedAt = &playedAt
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *stubMatchRepo) VoidScheduledByRound(_ context.Context, _ repositories.SQLExecutor, roundID int) ([]int, error) {
	voided := make([]int, 0)
	for _, match := range r.matches {
		if match.RoundID == roundID && match.Status == models.MatchStatusScheduled {
			match.Status = models.MatchStatusVoid
			voided = append(voided, match.ID)
		}
	}
	return voided, nil
}

type stubLedgerRepo struct {
	entries []*models.LedgerEntry
}

func (r *stubLedgerRepo) Insert(_ context.Context, _ repositories.SQLExecutor, entry *models.LedgerEntry) error {
	entry.ID = len(r.entries) + 1
	entry.CreatedAt = time.Now()
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *stubLedgerRepo) SumByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID string, tournamentID int) (int64, error) {
	var sum int64
	for _, entry := range r.entries {
		if entry.PlayerID == playerID && entry.TournamentID == tournamentID {
			sum += entry.DeltaCents
		}
	}
	return sum, nil
}

func (r *stubLedgerRepo) SumAllByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Balance, error) {
	sums := make(map[string]int64)
	for _, entry := range r.entries {
		if entry.TournamentID == tournamentID {
			sums[entry.PlayerID] += entry.DeltaCents
		}
	}
	players := make([]string, 0, len(sums))
	for playerID := range sums {
		players = append(players, playerID)
	}
	sort.Strings(players)
	balances := make([]models.Balance, 0, len(players))
	for _, playerID := range players {
		balances = append(balances, models.Balance{
			PlayerID:     playerID,
			TournamentID: tournamentID,
			Cents:        sums[playerID],
		})
	}
	return balances, nil
}

func (r *stubLedgerRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]*models.LedgerEntry, error) {
	entries := make([]*models.LedgerEntry, 0)
	for _, entry := range r.entries {
		if entry.MatchID != nil && *entry.MatchID == matchID {
			copied := *entry
			entries = append(entries, &copied)
		}
	}
	return entries, nil
}

type stubLotRepo struct {
	lots []*models.AuctionLot
}

func (r *stubLotRepo) Create(_ context.Context, _ repositories.SQLExecutor, lot *models.AuctionLot) error {
	lot.ID = len(r.lots) + 1
	copied := *lot
	r.lots = append(r.lots, &copied)
	return nil
}

func (r *stubLotRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.AuctionLot, error) {
	for _, lot := range r.lots {
		if lot.ID == id {
			copied := *lot
			return &copied, nil
		}
	}
	return nil, repositories.ErrLotNotFound
}

func (r *stubLotRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.AuctionLot, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *stubLotRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.AuctionLot, error) {
	lots := make([]*models.AuctionLot, 0)
	for _, lot := range r.lots {
		if lot.TournamentID == tournamentID {
			copied := *lot
			lots = append(lots, &copied)
		}
	}
	return lots, nil
}

func (r *stubLotRepo) ListByTournamentForUpdate(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.AuctionLot, error) {
	return r.ListByTournament(ctx, exec, tournamentID)
}

func (r *stubLotRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, lot := range r.lots {
		if lot.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *stubLotRepo) UpdateHighBid(_ context.Context, _ repositories.SQLExecutor, id int, highBidCents int64, highBidderID string) error {
	for _, lot := range r.lots {
		if lot.ID == id {
			lot.HighBidCents = highBidCents
			lot.HighBidderID = &highBidderID
			return nil
		}
	}
	return repositories.ErrLotNotFound
}

func (r *stubLotRepo) MarkSettled(_ context.Context, _ repositories.SQLExecutor, id int, winnerID string, winningCents int64) error {
	for _, lot := range r.lots {
		if lot.ID == id {
			lot.Status = models.LotStatusSettled
			lot.WinnerID = &winnerID
			lot.WinningCents = &winningCents
			return nil
		}
	}
	return repositories.ErrLotNotFound
}

func (r *stubLotRepo) MarkUnsold(_ context.Context, _ repositories.SQLExecutor, id int) error {
	for _, lot := range r.lots {
		if lot.ID == id {
			lot.Status = models.LotStatusUnsold
			return nil
		}
	}
	return repositories.ErrLotNotFound
}

type stubPledgeRepo struct {
	pledges []*models.PledgeItem
}

func (r *stubPledgeRepo) Create(_ context.Context, _ repositories.SQLExecutor, pledge *models.PledgeItem) error {
	pledge.ID = len(r.pledges) + 1
	copied := *pledge
	r.pledges = append(r.pledges, &copied)
	return nil
}

func (r *stubPledgeRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.PledgeItem, error) {
	for _, pledge := range r.pledges {
		if pledge.ID == id {
			copied := *pledge
			return &copied, nil
		}
	}
	return nil, repositories.ErrPledgeNotFound
}

func (r *stubPledgeRepo) ListByTournamentAndStatus(_ context.Context, _ repositories.SQLExecutor, tournamentID int, status *models.PledgeStatus) ([]*models.PledgeItem, error) {
	pledges := make([]*models.PledgeItem, 0)
	for _, pledge := range r.pledges {
		if pledge.TournamentID != tournamentID {
			continue
		}
		if status != nil && pledge.Status != *status {
			continue
		}
		copied := *pledge
		pledges = append(pledges, &copied)
	}
	return pledges, nil
}

func (r *stubPledgeRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.PledgeStatus) error {
	for _, pledge := range r.pledges {
		if pledge.ID == id {
			pledge.Status = status
			return nil
		}
	}
	return repositories.ErrPledgeNotFound
}

func (r *stubPledgeRepo) UpdatePhotoKey(_ context.Context, _ repositories.SQLExecutor, id int, photoKey *string) error {
	for _, pledge := range r.pledges {
		if pledge.ID == id {
			pledge.PhotoKey = photoKey
			return nil
		}
	}
	return repositories.ErrPledgeNotFound
}

type stubBidRepo struct {
	bids []*models.Bid
}

func (r *stubBidRepo) Create(_ context.Context, _ repositories.SQLExecutor, bid *models.Bid) error {
	bid.ID = len(r.bids) + 1
	bid.CreatedAt = time.Now()
	copied := *bid
	r.bids = append(r.bids, &copied)
	return nil
}

func (r *stubBidRepo) ListByLot(_ context.Context, _ repositories.SQLExecutor, lotID int) ([]*models.Bid, error) {
	bids := make([]*models.Bid, 0)
	for _, bid := range r.bids {
		if bid.LotID == lotID {
			copied := *bid
			bids = append(bids, &copied)
		}
	}
	return bids, nil
}
