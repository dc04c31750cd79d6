package drops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
)

// Repository exposes persistence for curated drops.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a drops repository bound to the provided DB.
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

// ListActive returns active drops in display order, beats preloaded.
func (r *Repository) ListActive(ctx context.Context) ([]models.Drop, error) {
	var drops []models.Drop
	err := r.db.WithContext(ctx).
		Preload("Beats", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Beats.Beat").
		Where("is_active = ?", true).
		Order("order_index ASC, created_at DESC").
		Find(&drops).Error
	if err != nil {
		return nil, err
	}
	return drops, nil
}

// ListAll returns every drop for the admin dashboard.
func (r *Repository) ListAll(ctx context.Context) ([]models.Drop, error) {
	var drops []models.Drop
	err := r.db.WithContext(ctx).
		Preload("Beats").
		Order("order_index ASC, created_at DESC").
		Find(&drops).Error
	if err != nil {
		return nil, err
	}
	return drops, nil
}

// FindByID loads a drop with its beat placements.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Drop, error) {
	var drop models.Drop
	err := r.db.WithContext(ctx).
		Preload("Beats", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Beats.Beat").
		Where("id = ?", id).
		First(&drop).Error
	if err != nil {
		return nil, err
	}
	return &drop, nil
}

// FindBySlug loads a drop by slug with its beat placements.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Drop, error) {
	var drop models.Drop
	err := r.db.WithContext(ctx).
		Preload("Beats", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Beats.Beat").
		Where("slug = ?", slug).
		First(&drop).Error
	if err != nil {
		return nil, err
	}
	return &drop, nil
}

// Create inserts a drop.
func (r *Repository) Create(ctx context.Context, drop *models.Drop) (*models.Drop, error) {
	if err := r.db.WithContext(ctx).Create(drop).Error; err != nil {
		return nil, err
	}
	return drop, nil
}

// Update saves the provided drop.
func (r *Repository) Update(ctx context.Context, drop *models.Drop) (*models.Drop, error) {
	if err := r.db.WithContext(ctx).Omit("Beats").Save(drop).Error; err != nil {
		return nil, err
	}
	return drop, nil
}

// Delete removes a drop; placements cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Drop{}, "id = ?", id).Error
}

// ReplaceBeats atomically replaces the beat placements for a drop.
func (r *Repository) ReplaceBeats(ctx context.Context, dropID uuid.UUID, placements []models.DropBeat) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("drop_id = ?", dropID).Delete(&models.DropBeat{}).Error; err != nil {
		return err
	}
	if len(placements) == 0 {
		return nil
	}
	for i := range placements {
		placements[i].DropID = dropID
	}
	return tx.Create(&placements).Error
}
