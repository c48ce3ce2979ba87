package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtclub/tournament-engine/models"
)

// LedgerRepository is strictly append-only: entries are inserted and summed,
// never updated or deleted. Corrections happen through compensating entries.
type LedgerRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, entry *models.LedgerEntry) error
	SumByPlayer(ctx context.Context, exec SQLExecutor, playerID string, tournamentID int) (int64, error)
	SumAllByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Balance, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.LedgerEntry, error)
}

type postgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) LedgerRepository {
	return &postgresLedgerRepository{db: db}
}

func (r *postgresLedgerRepository) Insert(ctx context.Context, exec SQLExecutor, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (player_id, tournament_id, delta_cents, reason, match_id, lot_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		entry.PlayerID,
		entry.TournamentID,
		entry.DeltaCents,
		entry.Reason,
		entry.MatchID,
		entry.LotID,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry for player %s: %w", entry.PlayerID, err)
	}
	return nil
}

func (r *postgresLedgerRepository) SumByPlayer(ctx context.Context, exec SQLExecutor, playerID string, tournamentID int) (int64, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT COALESCE(SUM(delta_cents), 0)
		FROM ledger_entries
		WHERE player_id = $1 AND tournament_id = $2`

	var sum int64
	if err := exec.QueryRowContext(ctx, query, playerID, tournamentID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum ledger for player %s in tournament %d: %w", playerID, tournamentID, err)
	}
	return sum, nil
}

func (r *postgresLedgerRepository) SumAllByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Balance, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT player_id, COALESCE(SUM(delta_cents), 0)
		FROM ledger_entries
		WHERE tournament_id = $1
		GROUP BY player_id
		ORDER BY player_id`

	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	balances := make([]models.Balance, 0)
	for rows.Next() {
		b := models.Balance{TournamentID: tournamentID}
		if scanErr := rows.Scan(&b.PlayerID, &b.Cents); scanErr != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", scanErr)
		}
		balances = append(balances, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during balance rows iteration: %w", err)
	}
	return balances, nil
}

func (r *postgresLedgerRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.LedgerEntry, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT id, player_id, tournament_id, delta_cents, reason, match_id, lot_id, created_at
		FROM ledger_entries
		WHERE match_id = $1
		ORDER BY id ASC`

	rows, err := exec.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries for match %d: %w", matchID, err)
	}
	defer rows.Close()

	entries := make([]*models.LedgerEntry, 0)
	for rows.Next() {
		entry := &models.LedgerEntry{}
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.PlayerID,
			&entry.TournamentID,
			&entry.DeltaCents,
			&entry.Reason,
			&entry.MatchID,
			&entry.LotID,
			&entry.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ledger rows iteration: %w", err)
	}
	return entries, nil
}
