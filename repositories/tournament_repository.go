package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtclub/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row for the duration of the
	// surrounding transaction. All state transitions go through this lock.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, currentRound int) error
	SetAuctionOpenedAt(ctx context.Context, exec SQLExecutor, id int, openedAt time.Time) error
	SetSettledAt(ctx context.Context, exec SQLExecutor, id int, settledAt time.Time) error
	AddRoster(ctx context.Context, exec SQLExecutor, tournamentID int, playerIDs []string) error
	ListRoster(ctx context.Context, exec SQLExecutor, tournamentID int) ([]string, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, series_index, roster_size, round_count, current_round,
	       status, shuffle_seed, auction_opened_at, settled_at, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO tournaments
			(name, series_index, roster_size, round_count, current_round, status, shuffle_seed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		t.Name,
		t.SeriesIndex,
		t.RosterSize,
		t.RoundCount,
		t.CurrentRound,
		t.Status,
		t.ShuffleSeed,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "tournaments_name_key" {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(exec.QueryRowContext(ctx, query, id), id)
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.scanTournament(exec.QueryRowContext(ctx, query, id), id)
}

func (r *postgresTournamentRepository) scanTournament(row *sql.Row, id int) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.SeriesIndex,
		&t.RosterSize,
		&t.RoundCount,
		&t.CurrentRound,
		&t.Status,
		&t.ShuffleSeed,
		&t.AuctionOpenedAt,
		&t.SettledAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, currentRound int) error {
	query := `UPDATE tournaments SET status = $1, current_round = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, status, currentRound, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetAuctionOpenedAt(ctx context.Context, exec SQLExecutor, id int, openedAt time.Time) error {
	query := `UPDATE tournaments SET auction_opened_at = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, openedAt, id)
	if err != nil {
		return fmt.Errorf("failed to set auction_opened_at for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetSettledAt(ctx context.Context, exec SQLExecutor, id int, settledAt time.Time) error {
	query := `UPDATE tournaments SET settled_at = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, settledAt, id)
	if err != nil {
		return fmt.Errorf("failed to set settled_at for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddRoster(ctx context.Context, exec SQLExecutor, tournamentID int, playerIDs []string) error {
	query := `
		INSERT INTO tournament_players (tournament_id, player_id)
		SELECT $1, unnest($2::text[])`
	if _, err := exec.ExecContext(ctx, query, tournamentID, pq.Array(playerIDs)); err != nil {
		return fmt.Errorf("failed to insert roster for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) ListRoster(ctx context.Context, exec SQLExecutor, tournamentID int) ([]string, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT player_id FROM tournament_players WHERE tournament_id = $1 ORDER BY player_id`
	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	roster := make([]string, 0)
	for rows.Next() {
		var playerID string
		if scanErr := rows.Scan(&playerID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", scanErr)
		}
		roster = append(roster, playerID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return roster, nil
}
