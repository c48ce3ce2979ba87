package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtclub/tournament-engine/models"
)

var ErrRoundNotFound = errors.New("round not found")

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error)
	GetByTournamentAndIndex(ctx context.Context, exec SQLExecutor, tournamentID, index int) (*models.Round, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO rounds (tournament_id, round_index, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		round.TournamentID,
		round.Index,
		round.Status,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert round %d for tournament %d: %w", round.Index, round.TournamentID, err)
	}
	return nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT id, tournament_id, round_index, status, created_at FROM rounds WHERE id = $1`

	round := &models.Round{}
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&round.ID,
		&round.TournamentID,
		&round.Index,
		&round.Status,
		&round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan round %d: %w", id, err)
	}
	return round, nil
}

func (r *postgresRoundRepository) GetByTournamentAndIndex(ctx context.Context, exec SQLExecutor, tournamentID, index int) (*models.Round, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT id, tournament_id, round_index, status, created_at
		FROM rounds
		WHERE tournament_id = $1 AND round_index = $2`

	round := &models.Round{}
	err := exec.QueryRowContext(ctx, query, tournamentID, index).Scan(
		&round.ID,
		&round.TournamentID,
		&round.Index,
		&round.Status,
		&round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan round %d of tournament %d: %w", index, tournamentID, err)
	}
	return round, nil
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT id, tournament_id, round_index, status, created_at
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY round_index ASC`

	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var round models.Round
		if scanErr := rows.Scan(
			&round.ID,
			&round.TournamentID,
			&round.Index,
			&round.Status,
			&round.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", scanErr)
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during round rows iteration: %w", err)
	}
	return rounds, nil
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error {
	query := `UPDATE rounds SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update round %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}
