package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/osinbeats/beatstore-backend/pkg/enums"
)

// CartItem is one (beat, license) selection for a guest session. SessionID is
// an opaque client-generated token, a correlation id rather than a credential.
// PriceCents is the snapshot captured at add-to-cart time.
type CartItem struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID   string            `gorm:"column:session_id;not null;index"`
	BeatID      uuid.UUID         `gorm:"column:beat_id;type:uuid;not null"`
	LicenseTier enums.LicenseTier `gorm:"column:license_tier;type:license_tier;not null"`
	PriceCents  int               `gorm:"column:price_cents;not null"`
	Beat        *Beat             `gorm:"foreignKey:BeatID"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
