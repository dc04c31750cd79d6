package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Beat is a catalog listing. Prices are integer minor units, one per license
// tier. IsSold is set once by fulfillment when an exclusive tier is purchased
// and is never cleared outside an admin override.
type Beat struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title           string         `gorm:"column:title;not null"`
	Slug            string         `gorm:"column:slug;not null;uniqueIndex"`
	Description     *string        `gorm:"column:description"`
	BPM             *int           `gorm:"column:bpm"`
	Key             *string        `gorm:"column:key"`
	Genre           *string        `gorm:"column:genre"`
	Mood            *string        `gorm:"column:mood"`
	Tags            pq.StringArray `gorm:"column:tags;type:text[]"`
	AudioPreviewURL *string        `gorm:"column:audio_preview_url"`
	AudioFullURL    *string        `gorm:"column:audio_full_url"`
	CoverImageURL   *string        `gorm:"column:cover_image_url"`
	PriceMP3Cents   int            `gorm:"column:price_mp3_cents;not null"`
	PriceWAVCents   int            `gorm:"column:price_wav_cents;not null"`
	PriceStemsCents int            `gorm:"column:price_stems_cents;not null"`
	IsSold          bool           `gorm:"column:is_sold;not null;default:false"`
	IsFeatured      bool           `gorm:"column:is_featured;not null;default:false"`
	IsPublished     bool           `gorm:"column:is_published;not null;default:false"`
	PlaysCount      int            `gorm:"column:plays_count;not null;default:0"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
