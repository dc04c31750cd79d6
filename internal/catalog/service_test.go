package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/enums"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
	"github.com/osinbeats/beatstore-backend/pkg/pagination"
)

type stubBeatRepo struct {
	beats      map[string]*models.Beat
	listResult []models.Beat
	listErr    error
	plays      map[uuid.UUID]int
}

func newStubBeatRepo() *stubBeatRepo {
	return &stubBeatRepo{
		beats: map[string]*models.Beat{},
		plays: map[uuid.UUID]int{},
	}
}

func (s *stubBeatRepo) Create(_ context.Context, beat *models.Beat) (*models.Beat, error) {
	if beat.ID == uuid.Nil {
		beat.ID = uuid.New()
	}
	s.beats[beat.Slug] = beat
	return beat, nil
}

func (s *stubBeatRepo) Update(_ context.Context, beat *models.Beat) (*models.Beat, error) {
	s.beats[beat.Slug] = beat
	return beat, nil
}

func (s *stubBeatRepo) Delete(_ context.Context, id uuid.UUID) error {
	for slug, beat := range s.beats {
		if beat.ID == id {
			delete(s.beats, slug)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubBeatRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Beat, error) {
	for _, beat := range s.beats {
		if beat.ID == id {
			return beat, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBeatRepo) FindBySlug(_ context.Context, slug string) (*models.Beat, error) {
	beat, ok := s.beats[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return beat, nil
}

func (s *stubBeatRepo) ListPublished(_ context.Context, _ ListFilter) ([]models.Beat, error) {
	return s.listResult, s.listErr
}

func (s *stubBeatRepo) ListAll(_ context.Context) ([]models.Beat, error) {
	out := make([]models.Beat, 0, len(s.beats))
	for _, beat := range s.beats {
		out = append(out, *beat)
	}
	return out, nil
}

func (s *stubBeatRepo) IncrementPlays(_ context.Context, id uuid.UUID) error {
	if _, err := s.FindByID(context.Background(), id); err != nil {
		return err
	}
	s.plays[id]++
	return nil
}

func TestGetBySlugHidesUnpublished(t *testing.T) {
	repo := newStubBeatRepo()
	repo.beats["hidden"] = &models.Beat{ID: uuid.New(), Slug: "hidden", IsPublished: false}
	repo.beats["visible"] = &models.Beat{ID: uuid.New(), Slug: "visible", IsPublished: true}

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetBySlug(context.Background(), "hidden")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unpublished beat, got %v", err)
	}

	beat, err := svc.GetBySlug(context.Background(), "visible")
	if err != nil {
		t.Fatalf("get visible beat: %v", err)
	}
	if beat.Slug != "visible" {
		t.Fatalf("unexpected beat %q", beat.Slug)
	}
}

func TestListReturnsNextCursorOnlyWhenMorePagesExist(t *testing.T) {
	repo := newStubBeatRepo()
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		repo.listResult = append(repo.listResult, models.Beat{
			ID:        uuid.New(),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	page, err := svc.List(context.Background(), ListFilter{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Beats) != 2 {
		t.Fatalf("expected 2 beats, got %d", len(page.Beats))
	}
	if page.NextCursor == "" {
		t.Fatal("expected a next cursor when the listing overflows the page")
	}

	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor.ID != page.Beats[1].ID {
		t.Fatalf("cursor should point at the last returned beat")
	}

	repo.listResult = repo.listResult[:2]
	page, err = svc.List(context.Background(), ListFilter{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.NextCursor != "" {
		t.Fatalf("expected empty cursor for final page, got %q", page.NextCursor)
	}
}

func TestRecordPlayMissingBeat(t *testing.T) {
	svc, err := NewService(newStubBeatRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	err = svc.RecordPlay(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPriceForTier(t *testing.T) {
	beat := &models.Beat{PriceMP3Cents: 2999, PriceWAVCents: 4999, PriceStemsCents: 14999}

	cases := []struct {
		tier enums.LicenseTier
		want int
	}{
		{enums.LicenseTierMP3, 2999},
		{enums.LicenseTierWAV, 4999},
		{enums.LicenseTierStems, 14999},
	}
	for _, tc := range cases {
		got, err := PriceForTier(beat, tc.tier)
		if err != nil {
			t.Fatalf("price for %s: %v", tc.tier, err)
		}
		if got != tc.want {
			t.Fatalf("tier %s: expected %d, got %d", tc.tier, tc.want, got)
		}
	}

	if _, err := PriceForTier(beat, enums.LicenseTier("vinyl")); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}
