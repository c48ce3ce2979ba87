package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtclub/tournament-engine/models"
)

var ErrLotNotFound = errors.New("auction lot not found")

type LotRepository interface {
	Create(ctx context.Context, exec SQLExecutor, lot *models.AuctionLot) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.AuctionLot, error)
	// GetByIDForUpdate locks the lot row so the increment check and the new
	// high bid commit as one compare-and-set.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.AuctionLot, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.AuctionLot, error)
	ListByTournamentForUpdate(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.AuctionLot, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateHighBid(ctx context.Context, exec SQLExecutor, id int, highBidCents int64, highBidderID string) error
	MarkSettled(ctx context.Context, exec SQLExecutor, id int, winnerID string, winningCents int64) error
	MarkUnsold(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresLotRepository struct {
	db *sql.DB
}

func NewPostgresLotRepository(db *sql.DB) LotRepository {
	return &postgresLotRepository{db: db}
}

const lotColumns = `id, tournament_id, pledge_item_id, status, high_bid_cents, high_bidder_id,
	       winner_id, winning_cents, created_at`

func (r *postgresLotRepository) Create(ctx context.Context, exec SQLExecutor, lot *models.AuctionLot) error {
	query := `
		INSERT INTO auction_lots (tournament_id, pledge_item_id, status, high_bid_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		lot.TournamentID,
		lot.PledgeItemID,
		lot.Status,
		lot.HighBidCents,
	).Scan(&lot.ID, &lot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert auction lot for pledge %d: %w", lot.PledgeItemID, err)
	}
	return nil
}

func (r *postgresLotRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.AuctionLot, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + lotColumns + ` FROM auction_lots WHERE id = $1`
	return r.scanLot(exec.QueryRowContext(ctx, query, id), id)
}

func (r *postgresLotRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.AuctionLot, error) {
	query := `SELECT ` + lotColumns + ` FROM auction_lots WHERE id = $1 FOR UPDATE`
	return r.scanLot(exec.QueryRowContext(ctx, query, id), id)
}

func (r *postgresLotRepository) scanLot(row *sql.Row, id int) (*models.AuctionLot, error) {
	lot := &models.AuctionLot{}
	err := row.Scan(
		&lot.ID,
		&lot.TournamentID,
		&lot.PledgeItemID,
		&lot.Status,
		&lot.HighBidCents,
		&lot.HighBidderID,
		&lot.WinnerID,
		&lot.WinningCents,
		&lot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to scan auction lot %d: %w", id, err)
	}
	return lot, nil
}

func (r *postgresLotRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.AuctionLot, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + lotColumns + ` FROM auction_lots WHERE tournament_id = $1 ORDER BY id ASC`
	return r.queryLots(ctx, exec, query, tournamentID)
}

func (r *postgresLotRepository) ListByTournamentForUpdate(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.AuctionLot, error) {
	query := `SELECT ` + lotColumns + ` FROM auction_lots WHERE tournament_id = $1 ORDER BY id ASC FOR UPDATE`
	return r.queryLots(ctx, exec, query, tournamentID)
}

func (r *postgresLotRepository) queryLots(ctx context.Context, exec SQLExecutor, query string, arg interface{}) ([]*models.AuctionLot, error) {
	rows, err := exec.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query auction lots: %w", err)
	}
	defer rows.Close()

	lots := make([]*models.AuctionLot, 0)
	for rows.Next() {
		lot := &models.AuctionLot{}
		if scanErr := rows.Scan(
			&lot.ID,
			&lot.TournamentID,
			&lot.PledgeItemID,
			&lot.Status,
			&lot.HighBidCents,
			&lot.HighBidderID,
			&lot.WinnerID,
			&lot.WinningCents,
			&lot.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan auction lot row: %w", scanErr)
		}
		lots = append(lots, lot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during auction lot rows iteration: %w", err)
	}
	return lots, nil
}

func (r *postgresLotRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	if exec == nil {
		exec = r.db
	}
	var count int
	query := `SELECT COUNT(*) FROM auction_lots WHERE tournament_id = $1`
	if err := exec.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count auction lots for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresLotRepository) UpdateHighBid(ctx context.Context, exec SQLExecutor, id int, highBidCents int64, highBidderID string) error {
	query := `UPDATE auction_lots SET high_bid_cents = $1, high_bidder_id = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, highBidCents, highBidderID, id)
	if err != nil {
		return fmt.Errorf("failed to update high bid for lot %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrLotNotFound)
}

func (r *postgresLotRepository) MarkSettled(ctx context.Context, exec SQLExecutor, id int, winnerID string, winningCents int64) error {
	query := `UPDATE auction_lots SET status = $1, winner_id = $2, winning_cents = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, models.LotStatusSettled, winnerID, winningCents, id)
	if err != nil {
		return fmt.Errorf("failed to mark lot %d settled: %w", id, err)
	}
	return checkAffectedRows(result, ErrLotNotFound)
}

func (r *postgresLotRepository) MarkUnsold(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE auction_lots SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, models.LotStatusUnsold, id)
	if err != nil {
		return fmt.Errorf("failed to mark lot %d unsold: %w", id, err)
	}
	return checkAffectedRows(result, ErrLotNotFound)
}
