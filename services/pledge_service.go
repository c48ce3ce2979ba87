package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/courtclub/tournament-engine/models"
	"github.com/courtclub/tournament-engine/repositories"
	"github.com/courtclub/tournament-engine/storage"
)

type CreatePledgeInput struct {
	OwnerID       string                `json:"owner_id"`
	TournamentID  int                   `json:"tournament_id"`
	RoundID       *int                  `json:"round_id,omitempty"`
	Title         string                `json:"title"`
	Category      models.PledgeCategory `json:"category"`
	ValueMinCents *int64                `json:"value_min_cents,omitempty"`
	ValueMaxCents *int64                `json:"value_max_cents,omitempty"`
}

type PledgeService interface {
	CreatePledge(ctx context.Context, input CreatePledgeInput) (*models.PledgeItem, error)
	ApprovePledge(ctx context.Context, id int) (*models.PledgeItem, error)
	HidePledge(ctx context.Context, id int) (*models.PledgeItem, error)
	UploadPhoto(ctx context.Context, id int, contentType string, reader io.Reader) (*models.PledgeItem, error)
}

type pledgeService struct {
	pledgeRepo     repositories.PledgeRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewPledgeService(
	pledgeRepo repositories.PledgeRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PledgeService {
	return &pledgeService{
		pledgeRepo:     pledgeRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *pledgeService) CreatePledge(ctx context.Context, input CreatePledgeInput) (*models.PledgeItem, error) {
	if input.Title == "" {
		return nil, ErrPledgeTitleRequired
	}
	if !input.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrPledgeInvalidCategory, input.Category)
	}
	if input.ValueMinCents != nil && input.ValueMaxCents != nil && *input.ValueMinCents > *input.ValueMaxCents {
		return nil, ErrPledgeInvalidValueRange
	}
	if _, err := s.tournamentRepo.GetByID(ctx, nil, input.TournamentID); err != nil {
		return nil, translateRepoError(err)
	}

	pledge := &models.PledgeItem{
		OwnerID:       input.OwnerID,
		TournamentID:  input.TournamentID,
		RoundID:       input.RoundID,
		Title:         input.Title,
		Category:      input.Category,
		Status:        models.PledgeStatusDraft,
		ValueMinCents: input.ValueMinCents,
		ValueMaxCents: input.ValueMaxCents,
	}
	if err := s.pledgeRepo.Create(ctx, nil, pledge); err != nil {
		return nil, err
	}

	s.logger.Info("pledge created",
		slog.Int("pledge_id", pledge.ID),
		slog.Int("tournament_id", pledge.TournamentID),
		slog.String("category", string(pledge.Category)))
	return pledge, nil
}

func (s *pledgeService) ApprovePledge(ctx context.Context, id int) (*models.PledgeItem, error) {
	pledge, err := s.pledgeRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if pledge.Status != models.PledgeStatusDraft {
		return nil, ErrPledgeNotDraft
	}
	if err := s.pledgeRepo.UpdateStatus(ctx, nil, id, models.PledgeStatusApproved); err != nil {
		return nil, translateRepoError(err)
	}
	pledge.Status = models.PledgeStatusApproved
	populatePledgePhotoURL(pledge, s.uploader)
	return pledge, nil
}

func (s *pledgeService) HidePledge(ctx context.Context, id int) (*models.PledgeItem, error) {
	pledge, err := s.pledgeRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if err := s.pledgeRepo.UpdateStatus(ctx, nil, id, models.PledgeStatusHidden); err != nil {
		return nil, translateRepoError(err)
	}
	pledge.Status = models.PledgeStatusHidden
	populatePledgePhotoURL(pledge, s.uploader)
	return pledge, nil
}

// UploadPhoto stores the pledge photo in object storage and records the new
// key. A previously stored photo is deleted best-effort after the record is
// updated.
func (s *pledgeService) UploadPhoto(ctx context.Context, id int, contentType string, reader io.Reader) (*models.PledgeItem, error) {
	pledge, err := s.pledgeRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	key := fmt.Sprintf("pledges/%d/photo_%d", id, time.Now().UnixNano())
	uploadResult, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload pledge photo: %w", err)
	}

	oldKey := pledge.PhotoKey
	if err := s.pledgeRepo.UpdatePhotoKey(ctx, nil, id, &uploadResult.Key); err != nil {
		return nil, translateRepoError(err)
	}
	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous pledge photo",
				slog.Int("pledge_id", id),
				slog.String("key", *oldKey),
				slog.Any("error", delErr))
		}
	}

	pledge.PhotoKey = &uploadResult.Key
	populatePledgePhotoURL(pledge, s.uploader)
	return pledge, nil
}
