package catalog

import (
	"strings"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/pagination"
)

// ListFilter narrows the public catalog listing.
type ListFilter struct {
	Genre      string
	Mood       string
	Search     string
	Featured   *bool
	Pagination pagination.Params
}

func (f ListFilter) normalized() ListFilter {
	f.Genre = strings.TrimSpace(f.Genre)
	f.Mood = strings.TrimSpace(f.Mood)
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// Page is one page of catalog results plus the cursor for the next one.
type Page struct {
	Beats      []models.Beat
	NextCursor string
}

// BeatInput carries admin-supplied beat fields for create and update.
type BeatInput struct {
	Title           string   `json:"title" validate:"required,min=1,max=200"`
	Slug            string   `json:"slug" validate:"required,min=1,max=200"`
	Description     *string  `json:"description,omitempty"`
	BPM             *int     `json:"bpm,omitempty" validate:"omitempty,min=20,max=400"`
	Key             *string  `json:"key,omitempty"`
	Genre           *string  `json:"genre,omitempty"`
	Mood            *string  `json:"mood,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	AudioPreviewURL *string  `json:"audio_preview_url,omitempty"`
	AudioFullURL    *string  `json:"audio_full_url,omitempty"`
	CoverImageURL   *string  `json:"cover_image_url,omitempty"`
	PriceMP3Cents   int      `json:"price_mp3_cents" validate:"min=0"`
	PriceWAVCents   int      `json:"price_wav_cents" validate:"min=0"`
	PriceStemsCents int      `json:"price_stems_cents" validate:"min=0"`
	IsFeatured      bool     `json:"is_featured"`
	IsPublished     bool     `json:"is_published"`
}
