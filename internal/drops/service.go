package drops

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db"
	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
)

// DropInput carries admin-supplied drop fields.
type DropInput struct {
	Title              string      `json:"title" validate:"required,min=1,max=200"`
	Slug               string      `json:"slug" validate:"required,min=1,max=200"`
	Description        *string     `json:"description,omitempty"`
	CoverImageURL      *string     `json:"cover_image_url,omitempty"`
	BackgroundImageURL *string     `json:"background_image_url,omitempty"`
	BackgroundColor    string      `json:"background_color,omitempty"`
	IsActive           bool        `json:"is_active"`
	OrderIndex         int         `json:"order_index" validate:"min=0"`
	ReleaseDate        *time.Time  `json:"release_date,omitempty"`
	BeatIDs            []uuid.UUID `json:"beat_ids,omitempty"`
}

type dropRepository interface {
	ListActive(ctx context.Context) ([]models.Drop, error)
	ListAll(ctx context.Context) ([]models.Drop, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Drop, error)
	FindBySlug(ctx context.Context, slug string) (*models.Drop, error)
	Create(ctx context.Context, drop *models.Drop) (*models.Drop, error)
	Update(ctx context.Context, drop *models.Drop) (*models.Drop, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceBeats(ctx context.Context, dropID uuid.UUID, placements []models.DropBeat) error
}

// Service exposes drop reads for the storefront and writes for the admin.
type Service interface {
	ListActive(ctx context.Context) ([]models.Drop, error)
	GetBySlug(ctx context.Context, slug string) (*models.Drop, error)

	AdminList(ctx context.Context) ([]models.Drop, error)
	CreateDrop(ctx context.Context, input DropInput) (*models.Drop, error)
	UpdateDrop(ctx context.Context, id uuid.UUID, input DropInput) (*models.Drop, error)
	DeleteDrop(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo dropRepository
}

// NewService builds the drops service.
func NewService(repo dropRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "drops repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.Drop, error) {
	drops, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drops")
	}
	return drops, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Drop, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}
	drop, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "drop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load drop")
	}
	if !drop.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "drop not found")
	}
	return drop, nil
}

func (s *service) AdminList(ctx context.Context) ([]models.Drop, error) {
	drops, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drops")
	}
	return drops, nil
}

func (s *service) CreateDrop(ctx context.Context, input DropInput) (*models.Drop, error) {
	drop := &models.Drop{}
	applyInput(drop, input)

	created, err := s.repo.Create(ctx, drop)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create drop")
	}
	if err := s.replacePlacements(ctx, created.ID, input.BeatIDs); err != nil {
		return nil, err
	}
	return s.reload(ctx, created.ID)
}

func (s *service) UpdateDrop(ctx context.Context, id uuid.UUID, input DropInput) (*models.Drop, error) {
	drop, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(drop, input)

	if _, err := s.repo.Update(ctx, drop); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update drop")
	}
	if err := s.replacePlacements(ctx, id, input.BeatIDs); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *service) DeleteDrop(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete drop")
	}
	return nil
}

func (s *service) findByID(ctx context.Context, id uuid.UUID) (*models.Drop, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "drop id required")
	}
	drop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "drop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load drop")
	}
	return drop, nil
}

func (s *service) replacePlacements(ctx context.Context, dropID uuid.UUID, beatIDs []uuid.UUID) error {
	placements := make([]models.DropBeat, 0, len(beatIDs))
	seen := map[uuid.UUID]struct{}{}
	for i, beatID := range beatIDs {
		if beatID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "beat id required")
		}
		if _, dup := seen[beatID]; dup {
			continue
		}
		seen[beatID] = struct{}{}
		placements = append(placements, models.DropBeat{BeatID: beatID, OrderIndex: i})
	}
	if err := s.repo.ReplaceBeats(ctx, dropID, placements); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace drop beats")
	}
	return nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*models.Drop, error) {
	drop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload drop")
	}
	return drop, nil
}

func applyInput(drop *models.Drop, input DropInput) {
	drop.Title = input.Title
	drop.Slug = input.Slug
	drop.Description = input.Description
	drop.CoverImageURL = input.CoverImageURL
	drop.BackgroundImageURL = input.BackgroundImageURL
	if input.BackgroundColor != "" {
		drop.BackgroundColor = input.BackgroundColor
	}
	drop.IsActive = input.IsActive
	drop.OrderIndex = input.OrderIndex
	drop.ReleaseDate = input.ReleaseDate
}
