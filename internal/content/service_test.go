package content

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
)

type stubContentRepo struct {
	settings map[string]*models.SiteSetting
	faq      map[uuid.UUID]*models.FAQItem
}

func newStubContentRepo() *stubContentRepo {
	return &stubContentRepo{
		settings: map[string]*models.SiteSetting{},
		faq:      map[uuid.UUID]*models.FAQItem{},
	}
}

func (s *stubContentRepo) FindSetting(_ context.Context, key string) (*models.SiteSetting, error) {
	setting, ok := s.settings[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return setting, nil
}

func (s *stubContentRepo) ListSettings(_ context.Context) ([]models.SiteSetting, error) {
	out := make([]models.SiteSetting, 0, len(s.settings))
	for _, setting := range s.settings {
		out = append(out, *setting)
	}
	return out, nil
}

func (s *stubContentRepo) UpsertSetting(_ context.Context, key string, value map[string]any) (*models.SiteSetting, error) {
	setting, ok := s.settings[key]
	if !ok {
		setting = &models.SiteSetting{ID: uuid.New(), Key: key}
		s.settings[key] = setting
	}
	setting.Value = value
	return setting, nil
}

func (s *stubContentRepo) ListFAQ(_ context.Context, publishedOnly bool) ([]models.FAQItem, error) {
	out := make([]models.FAQItem, 0, len(s.faq))
	for _, item := range s.faq {
		if publishedOnly && !item.IsPublished {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *stubContentRepo) FindFAQ(_ context.Context, id uuid.UUID) (*models.FAQItem, error) {
	item, ok := s.faq[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *stubContentRepo) CreateFAQ(_ context.Context, item *models.FAQItem) (*models.FAQItem, error) {
	item.ID = uuid.New()
	s.faq[item.ID] = item
	return item, nil
}

func (s *stubContentRepo) UpdateFAQ(_ context.Context, item *models.FAQItem) (*models.FAQItem, error) {
	s.faq[item.ID] = item
	return item, nil
}

func (s *stubContentRepo) DeleteFAQ(_ context.Context, id uuid.UUID) error {
	delete(s.faq, id)
	return nil
}

func TestPutSettingRejectsUnknownKey(t *testing.T) {
	svc, err := NewService(newStubContentRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.PutSetting(context.Background(), "definitely-not-a-key", map[string]any{"x": 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPutAndGetSettingRoundTrip(t *testing.T) {
	svc, err := NewService(newStubContentRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.GetSetting(ctx, SettingAbout); pkgerrors.As(err) == nil {
		t.Fatalf("expected not found before write, got %v", err)
	}

	written, err := svc.PutSetting(ctx, SettingAbout, map[string]any{"heading": "About Osin"})
	if err != nil {
		t.Fatalf("put setting: %v", err)
	}
	if written.Key != SettingAbout {
		t.Fatalf("unexpected key %q", written.Key)
	}

	loaded, err := svc.GetSetting(ctx, SettingAbout)
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	if loaded.Value["heading"] != "About Osin" {
		t.Fatalf("unexpected value %v", loaded.Value)
	}
}

func TestFAQPublishedFilter(t *testing.T) {
	repo := newStubContentRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.CreateFAQ(ctx, FAQInput{Question: "Q1", Answer: "A1", IsPublished: true}); err != nil {
		t.Fatalf("create faq: %v", err)
	}
	if _, err := svc.CreateFAQ(ctx, FAQInput{Question: "Q2", Answer: "A2", IsPublished: false}); err != nil {
		t.Fatalf("create faq: %v", err)
	}

	public, err := svc.ListFAQ(ctx, true)
	if err != nil {
		t.Fatalf("list public faq: %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("expected 1 published item, got %d", len(public))
	}

	all, err := svc.ListFAQ(ctx, false)
	if err != nil {
		t.Fatalf("list all faq: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
}

func TestUpdateFAQMissingItem(t *testing.T) {
	svc, err := NewService(newStubContentRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.UpdateFAQ(context.Background(), uuid.New(), FAQInput{Question: "Q", Answer: "A"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
