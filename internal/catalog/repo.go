package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/pagination"
)

// Repository exposes persistence operations for the beat catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a beat.
func (r *Repository) Create(ctx context.Context, beat *models.Beat) (*models.Beat, error) {
	if err := r.db.WithContext(ctx).Create(beat).Error; err != nil {
		return nil, err
	}
	return beat, nil
}

// Update saves the provided beat.
func (r *Repository) Update(ctx context.Context, beat *models.Beat) (*models.Beat, error) {
	if err := r.db.WithContext(ctx).Save(beat).Error; err != nil {
		return nil, err
	}
	return beat, nil
}

// Delete removes a beat by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Beat{}, "id = ?", id).Error
}

// FindByID loads a beat by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Beat, error) {
	var beat models.Beat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&beat).Error
	if err != nil {
		return nil, err
	}
	return &beat, nil
}

// FindBySlug loads a beat by slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Beat, error) {
	var beat models.Beat
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&beat).Error
	if err != nil {
		return nil, err
	}
	return &beat, nil
}

// ListPublished returns published beats filtered and cursor-paginated,
// newest first.
func (r *Repository) ListPublished(ctx context.Context, filter ListFilter) ([]models.Beat, error) {
	q := r.db.WithContext(ctx).Where("is_published = ?", true)

	if filter.Genre != "" {
		q = q.Where("genre = ?", filter.Genre)
	}
	if filter.Mood != "" {
		q = q.Where("mood = ?", filter.Mood)
	}
	if filter.Featured != nil {
		q = q.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR slug ILIKE ?", like, like)
	}

	cursor, err := pagination.ParseCursor(filter.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var beats []models.Beat
	err = q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Pagination.Limit)).
		Find(&beats).Error
	if err != nil {
		return nil, err
	}
	return beats, nil
}

// ListAll returns every beat for the admin dashboard, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Beat, error) {
	var beats []models.Beat
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&beats).Error
	if err != nil {
		return nil, err
	}
	return beats, nil
}

// IncrementPlays bumps the play counter without loading the row.
func (r *Repository) IncrementPlays(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Beat{}).
		Where("id = ?", id).
		UpdateColumn("plays_count", gorm.Expr("plays_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkSold flips the sold flag. Fulfillment calls this inside its
// confirmation transaction for exclusive license tiers.
func (r *Repository) MarkSold(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Beat{}).
		Where("id = ?", id).
		Update("is_sold", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err is the repo's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
