package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/osinbeats/beatstore-backend/pkg/db"
	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/enums"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
	"github.com/osinbeats/beatstore-backend/pkg/pagination"
)

type beatRepository interface {
	Create(ctx context.Context, beat *models.Beat) (*models.Beat, error)
	Update(ctx context.Context, beat *models.Beat) (*models.Beat, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Beat, error)
	FindBySlug(ctx context.Context, slug string) (*models.Beat, error)
	ListPublished(ctx context.Context, filter ListFilter) ([]models.Beat, error)
	ListAll(ctx context.Context) ([]models.Beat, error)
	IncrementPlays(ctx context.Context, id uuid.UUID) error
}

// Service exposes catalog reads for the storefront and writes for the admin.
type Service interface {
	List(ctx context.Context, filter ListFilter) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*models.Beat, error)
	RecordPlay(ctx context.Context, id uuid.UUID) error

	AdminList(ctx context.Context) ([]models.Beat, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*models.Beat, error)
	CreateBeat(ctx context.Context, input BeatInput) (*models.Beat, error)
	UpdateBeat(ctx context.Context, id uuid.UUID, input BeatInput) (*models.Beat, error)
	DeleteBeat(ctx context.Context, id uuid.UUID) error
	SetSold(ctx context.Context, id uuid.UUID, sold bool) (*models.Beat, error)
}

type service struct {
	repo beatRepository
}

// NewService builds the catalog service.
func NewService(repo beatRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	filter = filter.normalized()

	limit := pagination.NormalizeLimit(filter.Pagination.Limit)
	beats, err := s.repo.ListPublished(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list beats")
	}

	page := &Page{Beats: beats}
	if len(beats) > limit {
		page.Beats = beats[:limit]
		last := page.Beats[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Beat, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}
	beat, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "beat not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load beat")
	}
	if !beat.IsPublished {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "beat not found")
	}
	return beat, nil
}

func (s *service) RecordPlay(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "beat id required")
	}
	if err := s.repo.IncrementPlays(ctx, id); err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "beat not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record play")
	}
	return nil
}

func (s *service) AdminList(ctx context.Context) ([]models.Beat, error) {
	beats, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list beats")
	}
	return beats, nil
}

func (s *service) AdminGet(ctx context.Context, id uuid.UUID) (*models.Beat, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beat id required")
	}
	beat, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "beat not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load beat")
	}
	return beat, nil
}

func (s *service) CreateBeat(ctx context.Context, input BeatInput) (*models.Beat, error) {
	beat := &models.Beat{}
	applyInput(beat, input)

	created, err := s.repo.Create(ctx, beat)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create beat")
	}
	return created, nil
}

func (s *service) UpdateBeat(ctx context.Context, id uuid.UUID, input BeatInput) (*models.Beat, error) {
	beat, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(beat, input)

	updated, err := s.repo.Update(ctx, beat)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update beat")
	}
	return updated, nil
}

func (s *service) DeleteBeat(ctx context.Context, id uuid.UUID) error {
	if _, err := s.AdminGet(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete beat")
	}
	return nil
}

func (s *service) SetSold(ctx context.Context, id uuid.UUID, sold bool) (*models.Beat, error) {
	beat, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}
	beat.IsSold = sold
	updated, err := s.repo.Update(ctx, beat)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update beat")
	}
	return updated, nil
}

func applyInput(beat *models.Beat, input BeatInput) {
	beat.Title = input.Title
	beat.Slug = input.Slug
	beat.Description = input.Description
	beat.BPM = input.BPM
	beat.Key = input.Key
	beat.Genre = input.Genre
	beat.Mood = input.Mood
	beat.Tags = append(beat.Tags[:0], input.Tags...)
	beat.AudioPreviewURL = input.AudioPreviewURL
	beat.AudioFullURL = input.AudioFullURL
	beat.CoverImageURL = input.CoverImageURL
	beat.PriceMP3Cents = input.PriceMP3Cents
	beat.PriceWAVCents = input.PriceWAVCents
	beat.PriceStemsCents = input.PriceStemsCents
	beat.IsFeatured = input.IsFeatured
	beat.IsPublished = input.IsPublished
}

// PriceForTier resolves the listed price for a license tier in minor units.
func PriceForTier(beat *models.Beat, tier enums.LicenseTier) (int, error) {
	if beat == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "beat required")
	}
	switch tier {
	case enums.LicenseTierMP3:
		return beat.PriceMP3Cents, nil
	case enums.LicenseTierWAV:
		return beat.PriceWAVCents, nil
	case enums.LicenseTierStems:
		return beat.PriceStemsCents, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown license tier")
	}
}
