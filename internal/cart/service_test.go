package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/enums"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
)

type stubCartRepo struct {
	items map[uuid.UUID]*models.CartItem
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{items: map[uuid.UUID]*models.CartItem{}}
}

func (s *stubCartRepo) ListBySession(_ context.Context, sessionID string) ([]models.CartItem, error) {
	out := []models.CartItem{}
	for _, item := range s.items {
		if item.SessionID == sessionID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubCartRepo) Create(_ context.Context, item *models.CartItem) (*models.CartItem, error) {
	item.ID = uuid.New()
	s.items[item.ID] = item
	return item, nil
}

func (s *stubCartRepo) Delete(_ context.Context, sessionID string, itemID uuid.UUID) error {
	item, ok := s.items[itemID]
	if !ok || item.SessionID != sessionID {
		return gorm.ErrRecordNotFound
	}
	delete(s.items, itemID)
	return nil
}

func (s *stubCartRepo) DeleteBySession(_ context.Context, sessionID string) error {
	for id, item := range s.items {
		if item.SessionID == sessionID {
			delete(s.items, id)
		}
	}
	return nil
}

type stubBeatLoader struct {
	beats map[uuid.UUID]*models.Beat
}

func (s *stubBeatLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Beat, error) {
	beat, ok := s.beats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return beat, nil
}

func newTestBeat(published, sold bool) *models.Beat {
	return &models.Beat{
		ID:              uuid.New(),
		Title:           "Neon Nights",
		Slug:            "neon-nights",
		PriceMP3Cents:   2999,
		PriceWAVCents:   4999,
		PriceStemsCents: 14999,
		IsPublished:     published,
		IsSold:          sold,
	}
}

func newTestService(t *testing.T, beats ...*models.Beat) (Service, *stubCartRepo) {
	t.Helper()
	repo := newStubCartRepo()
	loader := &stubBeatLoader{beats: map[uuid.UUID]*models.Beat{}}
	for _, beat := range beats {
		loader.beats[beat.ID] = beat
	}
	svc, err := NewService(repo, loader)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	beat := newTestBeat(true, false)
	svc, _ := newTestService(t, beat)

	cart, err := svc.AddItem(context.Background(), "session-1", AddItemInput{
		BeatID:      beat.ID,
		LicenseTier: enums.LicenseTierWAV,
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	if cart.Items[0].PriceCents != 4999 {
		t.Fatalf("expected snapshot price 4999, got %d", cart.Items[0].PriceCents)
	}
	if cart.TotalCents != 4999 {
		t.Fatalf("expected total 4999, got %d", cart.TotalCents)
	}
}

func TestAddItemRejectsSoldExclusive(t *testing.T) {
	beat := newTestBeat(true, true)
	svc, _ := newTestService(t, beat)

	_, err := svc.AddItem(context.Background(), "session-1", AddItemInput{
		BeatID:      beat.ID,
		LicenseTier: enums.LicenseTierStems,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeGone {
		t.Fatalf("expected gone for sold exclusive, got %v", err)
	}

	// Non-exclusive tiers remain purchasable after an exclusive sale.
	cart, err := svc.AddItem(context.Background(), "session-1", AddItemInput{
		BeatID:      beat.ID,
		LicenseTier: enums.LicenseTierMP3,
	})
	if err != nil {
		t.Fatalf("add mp3 item on sold beat: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
}

func TestAddItemHidesUnpublishedBeat(t *testing.T) {
	beat := newTestBeat(false, false)
	svc, _ := newTestService(t, beat)

	_, err := svc.AddItem(context.Background(), "session-1", AddItemInput{
		BeatID:      beat.ID,
		LicenseTier: enums.LicenseTierMP3,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveItemScopedToSession(t *testing.T) {
	beat := newTestBeat(true, false)
	svc, repo := newTestService(t, beat)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "session-1", AddItemInput{BeatID: beat.ID, LicenseTier: enums.LicenseTierMP3})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	itemID := cart.Items[0].ID

	_, err = svc.RemoveItem(ctx, "other-session", itemID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign session, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatal("item should survive a foreign-session removal")
	}

	cart, err = svc.RemoveItem(ctx, "session-1", itemID)
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}
}

func TestGetCartRequiresSessionID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetCart(context.Background(), "   ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
