package models

import (
	"time"

	"github.com/google/uuid"
)

// SiteSetting is a keyed JSON document backing the editable site content
// (about, contact, shop copy, collaborators).
type SiteSetting struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Key       string         `gorm:"column:key;not null;uniqueIndex"`
	Value     map[string]any `gorm:"column:value;type:jsonb;serializer:json"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
