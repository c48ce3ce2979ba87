package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtclub/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrPledgeNotFound          = errors.New("pledge item not found")
	ErrPledgeTournamentInvalid = errors.New("pledge item tournament conflict or invalid")
)

type PledgeRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pledge *models.PledgeItem) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.PledgeItem, error)
	ListByTournamentAndStatus(ctx context.Context, exec SQLExecutor, tournamentID int, status *models.PledgeStatus) ([]*models.PledgeItem, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PledgeStatus) error
	UpdatePhotoKey(ctx context.Context, exec SQLExecutor, id int, photoKey *string) error
}

type postgresPledgeRepository struct {
	db *sql.DB
}

func NewPostgresPledgeRepository(db *sql.DB) PledgeRepository {
	return &postgresPledgeRepository{db: db}
}

const pledgeColumns = `id, owner_id, tournament_id, round_id, title, category, status,
	       value_min_cents, value_max_cents, photo_key, created_at`

func (r *postgresPledgeRepository) Create(ctx context.Context, exec SQLExecutor, p *models.PledgeItem) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO pledge_items
			(owner_id, tournament_id, round_id, title, category, status, value_min_cents, value_max_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		p.OwnerID,
		p.TournamentID,
		p.RoundID,
		p.Title,
		p.Category,
		p.Status,
		p.ValueMinCents,
		p.ValueMaxCents,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "pledge_items_tournament_id_fkey" {
			return ErrPledgeTournamentInvalid
		}
		return fmt.Errorf("failed to insert pledge item: %w", err)
	}
	return nil
}

func (r *postgresPledgeRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.PledgeItem, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + pledgeColumns + ` FROM pledge_items WHERE id = $1`

	p := &models.PledgeItem{}
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.OwnerID,
		&p.TournamentID,
		&p.RoundID,
		&p.Title,
		&p.Category,
		&p.Status,
		&p.ValueMinCents,
		&p.ValueMaxCents,
		&p.PhotoKey,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPledgeNotFound
		}
		return nil, fmt.Errorf("failed to scan pledge item %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPledgeRepository) ListByTournamentAndStatus(ctx context.Context, exec SQLExecutor, tournamentID int, status *models.PledgeStatus) ([]*models.PledgeItem, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + pledgeColumns + ` FROM pledge_items WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY id ASC`

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pledge items for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	pledges := make([]*models.PledgeItem, 0)
	for rows.Next() {
		p := &models.PledgeItem{}
		if scanErr := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.TournamentID,
			&p.RoundID,
			&p.Title,
			&p.Category,
			&p.Status,
			&p.ValueMinCents,
			&p.ValueMaxCents,
			&p.PhotoKey,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan pledge item row: %w", scanErr)
		}
		pledges = append(pledges, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pledge rows iteration: %w", err)
	}
	return pledges, nil
}

func (r *postgresPledgeRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PledgeStatus) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE pledge_items SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update pledge item %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrPledgeNotFound)
}

func (r *postgresPledgeRepository) UpdatePhotoKey(ctx context.Context, exec SQLExecutor, id int, photoKey *string) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE pledge_items SET photo_key = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, photoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update pledge item %d photo key: %w", id, err)
	}
	return checkAffectedRows(result, ErrPledgeNotFound)
}
