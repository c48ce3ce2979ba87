package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtclub/tournament-engine/models"
	"github.com/lib/pq"
)

var ErrBidLotInvalid = errors.New("bid lot conflict or invalid")

type BidRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bid *models.Bid) error
	// ListByLot returns bids ordered highest amount first, earliest first on
	// equal amounts, which is exactly the settlement order.
	ListByLot(ctx context.Context, exec SQLExecutor, lotID int) ([]*models.Bid, error)
}

type postgresBidRepository struct {
	db *sql.DB
}

func NewPostgresBidRepository(db *sql.DB) BidRepository {
	return &postgresBidRepository{db: db}
}

func (r *postgresBidRepository) Create(ctx context.Context, exec SQLExecutor, bid *models.Bid) error {
	query := `
		INSERT INTO bids (lot_id, bidder_id, amount_cents)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		bid.LotID,
		bid.BidderID,
		bid.AmountCents,
	).Scan(&bid.ID, &bid.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "bids_lot_id_fkey" {
			return ErrBidLotInvalid
		}
		return fmt.Errorf("failed to insert bid on lot %d: %w", bid.LotID, err)
	}
	return nil
}

func (r *postgresBidRepository) ListByLot(ctx context.Context, exec SQLExecutor, lotID int) ([]*models.Bid, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT id, lot_id, bidder_id, amount_cents, created_at
		FROM bids
		WHERE lot_id = $1
		ORDER BY amount_cents DESC, created_at ASC, id ASC`

	rows, err := exec.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids for lot %d: %w", lotID, err)
	}
	defer rows.Close()

	bids := make([]*models.Bid, 0)
	for rows.Next() {
		bid := &models.Bid{}
		if scanErr := rows.Scan(
			&bid.ID,
			&bid.LotID,
			&bid.BidderID,
			&bid.AmountCents,
			&bid.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan bid row: %w", scanErr)
		}
		bids = append(bids, bid)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bid rows iteration: %w", err)
	}
	return bids, nil
}
