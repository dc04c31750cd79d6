package content

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
)

// Known site setting keys. Admin writes are restricted to this set so a
// typo'd key cannot silently create an orphan document.
const (
	SettingAbout         = "about"
	SettingContact       = "contact"
	SettingShop          = "shop"
	SettingCollaborators = "collaborators"
	SettingSocial        = "social"
)

var knownSettingKeys = map[string]struct{}{
	SettingAbout:         {},
	SettingContact:       {},
	SettingShop:          {},
	SettingCollaborators: {},
	SettingSocial:        {},
}

// FAQInput carries admin-supplied FAQ fields.
type FAQInput struct {
	Question    string `json:"question" validate:"required,min=1"`
	Answer      string `json:"answer" validate:"required,min=1"`
	OrderIndex  int    `json:"order_index" validate:"min=0"`
	IsPublished bool   `json:"is_published"`
}

type contentRepository interface {
	FindSetting(ctx context.Context, key string) (*models.SiteSetting, error)
	ListSettings(ctx context.Context) ([]models.SiteSetting, error)
	UpsertSetting(ctx context.Context, key string, value map[string]any) (*models.SiteSetting, error)
	ListFAQ(ctx context.Context, publishedOnly bool) ([]models.FAQItem, error)
	FindFAQ(ctx context.Context, id uuid.UUID) (*models.FAQItem, error)
	CreateFAQ(ctx context.Context, item *models.FAQItem) (*models.FAQItem, error)
	UpdateFAQ(ctx context.Context, item *models.FAQItem) (*models.FAQItem, error)
	DeleteFAQ(ctx context.Context, id uuid.UUID) error
}

// Service exposes site settings and FAQ content.
type Service interface {
	GetSetting(ctx context.Context, key string) (*models.SiteSetting, error)
	ListSettings(ctx context.Context) ([]models.SiteSetting, error)
	PutSetting(ctx context.Context, key string, value map[string]any) (*models.SiteSetting, error)

	ListFAQ(ctx context.Context, publishedOnly bool) ([]models.FAQItem, error)
	CreateFAQ(ctx context.Context, input FAQInput) (*models.FAQItem, error)
	UpdateFAQ(ctx context.Context, id uuid.UUID, input FAQInput) (*models.FAQItem, error)
	DeleteFAQ(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo contentRepository
}

// NewService builds the content service.
func NewService(repo contentRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "content repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetSetting(ctx context.Context, key string) (*models.SiteSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key required")
	}
	setting, err := s.repo.FindSetting(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}
	return setting, nil
}

func (s *service) ListSettings(ctx context.Context) ([]models.SiteSetting, error) {
	settings, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	return settings, nil
}

func (s *service) PutSetting(ctx context.Context, key string, value map[string]any) (*models.SiteSetting, error) {
	key = strings.TrimSpace(key)
	if _, ok := knownSettingKeys[key]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown setting key")
	}
	if value == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting value required")
	}
	setting, err := s.repo.UpsertSetting(ctx, key, value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save setting")
	}
	return setting, nil
}

func (s *service) ListFAQ(ctx context.Context, publishedOnly bool) ([]models.FAQItem, error) {
	items, err := s.repo.ListFAQ(ctx, publishedOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list faq")
	}
	return items, nil
}

func (s *service) CreateFAQ(ctx context.Context, input FAQInput) (*models.FAQItem, error) {
	item := &models.FAQItem{
		Question:    input.Question,
		Answer:      input.Answer,
		OrderIndex:  input.OrderIndex,
		IsPublished: input.IsPublished,
	}
	created, err := s.repo.CreateFAQ(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create faq item")
	}
	return created, nil
}

func (s *service) UpdateFAQ(ctx context.Context, id uuid.UUID, input FAQInput) (*models.FAQItem, error) {
	item, err := s.findFAQ(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Question = input.Question
	item.Answer = input.Answer
	item.OrderIndex = input.OrderIndex
	item.IsPublished = input.IsPublished

	updated, err := s.repo.UpdateFAQ(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update faq item")
	}
	return updated, nil
}

func (s *service) DeleteFAQ(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findFAQ(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteFAQ(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete faq item")
	}
	return nil
}

func (s *service) findFAQ(ctx context.Context, id uuid.UUID) (*models.FAQItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "faq id required")
	}
	item, err := s.repo.FindFAQ(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "faq item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load faq item")
	}
	return item, nil
}
