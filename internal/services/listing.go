// Package services contains the application services. This file defines the
// listing creation pipeline: category resolution, media upload, record
// persistence, and the best-effort owner counter update.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/swapcloset/swapcloset/internal/common"
	"github.com/swapcloset/swapcloset/internal/dbx"
	"github.com/swapcloset/swapcloset/internal/logging"
	"github.com/swapcloset/swapcloset/internal/models"
	"github.com/swapcloset/swapcloset/internal/repositories/repomanager"
	"github.com/swapcloset/swapcloset/internal/storage"
)

// MediaUploader is the slice of the uploader the orchestrator needs.
type MediaUploader interface {
	UploadBatch(ctx context.Context, files []models.CandidateFile, opts storage.UploadOptions) (*models.BatchUploadResult, error)
}

// CreationResult is the successful outcome of one creation attempt. Upload
// is nil when the draft carried no files; when present, its failure count
// tells the caller how many images were lost while the listing itself was
// still created.
type CreationResult struct {
	Listing *models.ListingRecord
	Upload  *models.BatchUploadResult
}

// ListingService orchestrates listing creation. The operation is not
// idempotent: calling it twice with the same draft creates two records and
// uploads the media twice.
type ListingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    MediaUploader
	uploadOpts  storage.UploadOptions
	logger      logging.Logger
}

func NewListingService(db *sql.DB, m repomanager.RepositoryManager, uploader MediaUploader, uploadOpts storage.UploadOptions, logger logging.Logger) *ListingService {
	return &ListingService{
		db:          db,
		repomanager: m,
		uploader:    uploader,
		uploadOpts:  uploadOpts,
		logger:      logger.With("module", "listings"),
	}
}

// Create runs the creation pipeline for one draft. Steps are strictly
// sequential; a step failure short-circuits the rest and is returned as the
// operation's single verdict. Media uploaded before a later failure is not
// rolled back; the orphaned keys are logged instead.
func (s *ListingService) Create(ctx context.Context, draft *models.ListingDraft, ownerID string) (*CreationResult, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required: %w", common.ErrInvalidDraft)
	}

	category, err := s.repomanager.Categories(s.db).GetByName(ctx, draft.CategoryName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("category %q: %w", draft.CategoryName, common.ErrUnknownCategory)
		}
		return nil, fmt.Errorf("error resolving category: %w", err)
	}

	var batch *models.BatchUploadResult
	if len(draft.Files) > 0 {
		batch, err = s.uploader.UploadBatch(ctx, draft.Files, s.uploadOpts)
		if err != nil {
			return nil, fmt.Errorf("error uploading media: %w", err)
		}
		if batch.SuccessCount == 0 {
			return nil, fmt.Errorf("%w: %s", common.ErrNoImagesUploaded, strings.Join(batch.Errors, "; "))
		}
	}

	record := buildRecord(draft, category, ownerID, batch)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		record, err = s.repomanager.Listings(tx).Create(ctx, record)
		return err
	})
	if err != nil {
		if batch != nil {
			s.logger.Warn(ctx, "listing persistence failed after media upload, stored objects orphaned",
				"owner", ownerID, "orphaned", batch.SuccessCount)
		}
		return nil, fmt.Errorf("error creating listing: %w", err)
	}

	// Counter update is best-effort: its failure never fails the creation.
	if err := s.repomanager.Profiles(s.db).IncrementItemsListed(ctx, ownerID); err != nil {
		s.logger.Warn(ctx, "items listed counter update failed",
			"owner", ownerID, "listing", record.ID, "error", err)
	}

	s.logger.Info(ctx, "listing created", "listing", record.ID, "owner", ownerID)

	return &CreationResult{Listing: record, Upload: batch}, nil
}

// validateDraft applies the structural draft limits before anything is
// resolved or uploaded.
func validateDraft(draft *models.ListingDraft) error {
	switch {
	case draft == nil:
		return common.ErrInvalidDraft
	case strings.TrimSpace(draft.Title) == "":
		return fmt.Errorf("title is required: %w", common.ErrInvalidDraft)
	case strings.TrimSpace(draft.CategoryName) == "":
		return fmt.Errorf("category is required: %w", common.ErrInvalidDraft)
	case !draft.TermsAccepted:
		return fmt.Errorf("terms must be accepted: %w", common.ErrInvalidDraft)
	case len(draft.Files) > models.MaxDraftFiles:
		return fmt.Errorf("at most %d files allowed: %w", models.MaxDraftFiles, common.ErrInvalidDraft)
	case len(draft.Tags) > models.MaxDraftTags:
		return fmt.Errorf("at most %d tags allowed: %w", models.MaxDraftTags, common.ErrInvalidDraft)
	}

	for _, tag := range draft.Tags {
		if tag == "" || len(tag) > models.MaxDraftTagLength {
			return fmt.Errorf("tag %q exceeds %d characters: %w", tag, models.MaxDraftTagLength, common.ErrInvalidDraft)
		}
	}

	return nil
}

// buildRecord copies the draft into a persistable record with moderation
// status defaulted and engagement counters zeroed. Images stays nil when no
// file was uploaded.
func buildRecord(draft *models.ListingDraft, category *models.Category, ownerID string, batch *models.BatchUploadResult) *models.ListingRecord {
	record := &models.ListingRecord{
		OwnerID:    ownerID,
		CategoryID: category.ID,

		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Size:        draft.Size,
		Condition:   draft.Condition,
		Brand:       draft.Brand,
		Color:       draft.Color,
		Material:    draft.Material,
		Tags:        draft.Tags,

		PointsValue:        draft.PointsValue,
		ExchangePreference: draft.ExchangePreference,
		Latitude:           draft.Latitude,
		Longitude:          draft.Longitude,

		Status:    models.ListingStatusPending,
		Available: draft.Available,
	}
	if record.ExchangePreference == "" {
		record.ExchangePreference = models.ExchangeSwap
	}
	if batch != nil && len(batch.URLs) > 0 {
		record.Images = batch.URLs
	}
	return record
}
