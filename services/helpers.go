package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtclub/tournament-engine/models"
	"github.com/courtclub/tournament-engine/repositories"
	"github.com/courtclub/tournament-engine/storage"
)

// runInTx wraps fn in a transaction with the commit/rollback discipline every
// engine action uses: either all reads and writes of the action commit, or
// none do.
func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// translateRepoError maps repository not-found sentinels onto the service
// taxonomy so handlers only ever see service errors.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrRoundNotFound):
		return ErrRoundNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrPledgeNotFound):
		return ErrPledgeNotFound
	case errors.Is(err, repositories.ErrLotNotFound):
		return ErrLotNotFound
	default:
		return err
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dereferenceMatches(slice []*models.Match) []models.Match {
	if slice == nil {
		return []models.Match{}
	}
	result := make([]models.Match, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}

func populatePledgePhotoURL(pledge *models.PledgeItem, uploader storage.FileUploader) {
	if pledge != nil && pledge.PhotoKey != nil && *pledge.PhotoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*pledge.PhotoKey)
		if url != "" {
			pledge.PhotoURL = &url
		}
	}
}
