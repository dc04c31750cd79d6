package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/osinbeats/beatstore-backend/pkg/enums"
)

// Order is one fulfillment unit. StripeSessionID carries a unique constraint
// so webhook and poll confirmations collapse onto a single row.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BeatID          *uuid.UUID        `gorm:"column:beat_id;type:uuid"`
	CustomerEmail   string            `gorm:"column:customer_email;not null"`
	CustomerName    *string           `gorm:"column:customer_name"`
	LicenseTier     enums.LicenseTier `gorm:"column:license_tier;type:license_tier;not null"`
	PricePaidCents  int               `gorm:"column:price_paid_cents;not null"`
	StripeSessionID *string           `gorm:"column:stripe_session_id;uniqueIndex:orders_stripe_session_id_key"`
	StripePaymentID *string           `gorm:"column:stripe_payment_id"`
	Status          enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	DownloadCount   int               `gorm:"column:download_count;not null;default:0"`
	Beat            *Beat             `gorm:"foreignKey:BeatID"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
