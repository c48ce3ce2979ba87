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
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchRoundInvalid   = errors.New("match round conflict or invalid")
	ErrMatchPlayerConflict = errors.New("match player conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, sets models.SetScores, playedAt time.Time) error
	// VoidScheduledByRound voids every still-Scheduled match in a round and
	// reports which ones were voided. Played matches are untouched.
	VoidScheduledByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, round_id, p1_id, p2_id, is_bye, status, sets, played_at, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, round_id, p1_id, p2_id, is_bye, status, sets)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.RoundID,
		match.P1ID,
		match.P2ID,
		match.IsBye,
		match.Status,
		match.Sets,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(exec.QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanMatch(exec.QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchRepository) scanMatch(row *sql.Row, id int) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.RoundID,
		&match.P1ID,
		&match.P2ID,
		&match.IsBye,
		&match.Status,
		&match.Sets,
		&match.PlayedAt,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Match, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + matchColumns + ` FROM matches WHERE round_id = $1 ORDER BY id ASC`
	return r.queryMatches(ctx, exec, query, roundID)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY round_id ASC, id ASC`
	return r.queryMatches(ctx, exec, query, tournamentID)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, exec SQLExecutor, query string, arg interface{}) ([]*models.Match, error) {
	rows, err := exec.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if scanErr := rows.Scan(
			&match.ID,
			&match.TournamentID,
			&match.RoundID,
			&match.P1ID,
			&match.P2ID,
			&match.IsBye,
			&match.Status,
			&match.Sets,
			&match.PlayedAt,
			&match.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, sets models.SetScores, playedAt time.Time) error {
	query := `UPDATE matches SET status = $1, sets = $2, played_at = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, status, sets, playedAt, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) VoidScheduledByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]int, error) {
	query := `
		UPDATE matches SET status = $1
		WHERE round_id = $2 AND status = $3
		RETURNING id`

	rows, err := exec.QueryContext(ctx, query, models.MatchStatusVoid, roundID, models.MatchStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to void scheduled matches for round %d: %w", roundID, err)
	}
	defer rows.Close()

	voided := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan voided match id: %w", scanErr)
		}
		voided = append(voided, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during voided match rows iteration: %w", err)
	}
	return voided, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_round_id_fkey", "matches_tournament_id_fkey":
			return ErrMatchRoundInvalid
		case "matches_p1_id_fkey", "matches_p2_id_fkey":
			return ErrMatchPlayerConflict
		}
	}
	return err
}
