package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
)

// Repository exposes persistence for editable site content.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a content repository bound to the provided DB.
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

// FindSetting loads a site setting by key.
func (r *Repository) FindSetting(ctx context.Context, key string) (*models.SiteSetting, error) {
	var setting models.SiteSetting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// ListSettings returns every site setting.
func (r *Repository) ListSettings(ctx context.Context) ([]models.SiteSetting, error) {
	var settings []models.SiteSetting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpsertSetting writes the value for a key, inserting the row if missing.
func (r *Repository) UpsertSetting(ctx context.Context, key string, value map[string]any) (*models.SiteSetting, error) {
	setting, err := r.FindSetting(ctx, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		setting = &models.SiteSetting{Key: key}
	}
	setting.Value = value
	if err := r.db.WithContext(ctx).Save(setting).Error; err != nil {
		return nil, err
	}
	return setting, nil
}

// ListFAQ returns FAQ items in display order. publishedOnly hides drafts.
func (r *Repository) ListFAQ(ctx context.Context, publishedOnly bool) ([]models.FAQItem, error) {
	q := r.db.WithContext(ctx)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var items []models.FAQItem
	err := q.Order("order_index ASC, created_at ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindFAQ loads one FAQ item by id.
func (r *Repository) FindFAQ(ctx context.Context, id uuid.UUID) (*models.FAQItem, error) {
	var item models.FAQItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateFAQ inserts a FAQ item.
func (r *Repository) CreateFAQ(ctx context.Context, item *models.FAQItem) (*models.FAQItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateFAQ saves the provided FAQ item.
func (r *Repository) UpdateFAQ(ctx context.Context, item *models.FAQItem) (*models.FAQItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteFAQ removes a FAQ item by id.
func (r *Repository) DeleteFAQ(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.FAQItem{}, "id = ?", id).Error
}
