package models

import (
	"time"

	"github.com/google/uuid"
)

// Drop is a curated beat collection surfaced on the storefront.
type Drop struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title              string     `gorm:"column:title;not null"`
	Slug               string     `gorm:"column:slug;not null;uniqueIndex"`
	Description        *string    `gorm:"column:description"`
	CoverImageURL      *string    `gorm:"column:cover_image_url"`
	BackgroundImageURL *string    `gorm:"column:background_image_url"`
	BackgroundColor    string     `gorm:"column:background_color;not null;default:'#000000'"`
	IsActive           bool       `gorm:"column:is_active;not null;default:true"`
	OrderIndex         int        `gorm:"column:order_index;not null;default:0"`
	ReleaseDate        *time.Time `gorm:"column:release_date"`
	Beats              []DropBeat `gorm:"foreignKey:DropID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// DropBeat places a beat inside a drop at a position.
type DropBeat struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DropID     uuid.UUID `gorm:"column:drop_id;type:uuid;not null;uniqueIndex:drop_beats_drop_beat_key"`
	BeatID     uuid.UUID `gorm:"column:beat_id;type:uuid;not null;uniqueIndex:drop_beats_drop_beat_key"`
	OrderIndex int       `gorm:"column:order_index;not null;default:0"`
	Beat       *Beat     `gorm:"foreignKey:BeatID"`
}
