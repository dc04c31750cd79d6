package admins

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
)

// Repository exposes persistence for admin accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an admins repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail loads an admin by email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Create inserts an admin account.
func (r *Repository) Create(ctx context.Context, admin *models.AdminUser) (*models.AdminUser, error) {
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}
