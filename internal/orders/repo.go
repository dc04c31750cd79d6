package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/enums"
)

// Repository exposes persistence for the order ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repository bound to the provided DB.
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

// Create inserts an order (the pending row written at checkout build).
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its beat preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Beat").Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByStripeSessionID loads the order for a checkout session.
func (r *Repository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Beat").
		Where("stripe_session_id = ?", sessionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpsertConfirmation records a confirmed payment keyed on the session id.
// Webhook and poll confirmations race for the same session; the unique
// constraint on stripe_session_id plus ON CONFLICT collapses them to one
// row, whether or not a pending row was written at checkout build. The
// DO UPDATE is conditioned on the row not already being completed, so
// RowsAffected tells us atomically whether this call was the one that
// completed the order; replays report false and skip nothing of value
// since they carry identical data.
func (r *Repository) UpsertConfirmation(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_session_id"}},
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "orders.status <> ?", Vars: []any{enums.OrderStatusCompleted}},
			}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status",
				"stripe_payment_id",
				"price_paid_cents",
				"customer_email",
				"customer_name",
				"updated_at",
			}),
		}).
		Create(order)
	if res.Error != nil {
		return nil, false, res.Error
	}

	firstCompletion := res.RowsAffected > 0
	persisted, err := r.FindByStripeSessionID(ctx, *order.StripeSessionID)
	if err != nil {
		return nil, false, err
	}
	return persisted, firstCompletion, nil
}

// ListAll returns every order for the admin dashboard, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Preload("Beat").
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus overrides an order's status (admin escape hatch).
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
