package cart

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/internal/catalog"
	"github.com/osinbeats/beatstore-backend/pkg/db"
	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/enums"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
)

// AddItemInput carries an add-to-cart request.
type AddItemInput struct {
	BeatID      uuid.UUID         `json:"beat_id" validate:"required"`
	LicenseTier enums.LicenseTier `json:"license_tier" validate:"required"`
}

// Cart is a session's items plus the derived total.
type Cart struct {
	SessionID  string
	Items      []models.CartItem
	TotalCents int
}

type cartRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	Delete(ctx context.Context, sessionID string, itemID uuid.UUID) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

type beatLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Beat, error)
}

// Service manages guest carts keyed by an opaque session token.
type Service interface {
	GetCart(ctx context.Context, sessionID string) (*Cart, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID string, itemID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	repo  cartRepository
	beats beatLoader
}

// NewService builds the cart service.
func NewService(repo cartRepository, beats beatLoader) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repository required")
	}
	if beats == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "beat loader required")
	}
	return &service{repo: repo, beats: beats}, nil
}

func (s *service) GetCart(ctx context.Context, sessionID string) (*Cart, error) {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	return s.loadCart(ctx, sessionID)
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*Cart, error) {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if input.BeatID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beat id required")
	}
	if !input.LicenseTier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown license tier")
	}

	beat, err := s.beats.FindByID(ctx, input.BeatID)
	if err != nil {
		if catalog.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "beat not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load beat")
	}
	if !beat.IsPublished {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "beat not found")
	}
	if beat.IsSold && input.LicenseTier.IsExclusive() {
		return nil, pkgerrors.New(pkgerrors.CodeGone, "beat already sold")
	}

	price, err := catalog.PriceForTier(beat, input.LicenseTier)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		SessionID:   sessionID,
		BeatID:      beat.ID,
		LicenseTier: input.LicenseTier,
		PriceCents:  price,
	}
	if _, err := s.repo.Create(ctx, item); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "beat already in cart for that license")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return s.loadCart(ctx, sessionID)
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, itemID uuid.UUID) (*Cart, error) {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if err := s.repo.Delete(ctx, sessionID, itemID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.loadCart(ctx, sessionID)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBySession(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) loadCart(ctx context.Context, sessionID string) (*Cart, error) {
	items, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	cart := &Cart{SessionID: sessionID, Items: items}
	for _, item := range items {
		cart.TotalCents += item.PriceCents
	}
	return cart, nil
}

func normalizeSessionID(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session id required")
	}
	if len(sessionID) > 128 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session id too long")
	}
	return sessionID, nil
}
