package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/osinbeats/beatstore-backend/internal/admins"
	"github.com/osinbeats/beatstore-backend/internal/assets"
	"github.com/osinbeats/beatstore-backend/internal/cart"
	"github.com/osinbeats/beatstore-backend/internal/catalog"
	"github.com/osinbeats/beatstore-backend/internal/content"
	"github.com/osinbeats/beatstore-backend/internal/drops"
	"github.com/osinbeats/beatstore-backend/internal/fulfillment"
	ordersvc "github.com/osinbeats/beatstore-backend/internal/orders"
	pkgauth "github.com/osinbeats/beatstore-backend/pkg/auth"
	"github.com/osinbeats/beatstore-backend/pkg/config"
	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/enums"
	"github.com/osinbeats/beatstore-backend/pkg/logger"
	"github.com/osinbeats/beatstore-backend/pkg/metrics"
	"github.com/osinbeats/beatstore-backend/pkg/redis"
	pkgstripe "github.com/osinbeats/beatstore-backend/pkg/stripe"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) List(ctx context.Context, filter catalog.ListFilter) (*catalog.Page, error) {
	return &catalog.Page{}, nil
}

func (stubCatalogService) GetBySlug(ctx context.Context, slug string) (*models.Beat, error) {
	return &models.Beat{Slug: slug}, nil
}

func (stubCatalogService) RecordPlay(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubCatalogService) AdminList(ctx context.Context) ([]models.Beat, error) {
	return nil, nil
}

func (stubCatalogService) AdminGet(ctx context.Context, id uuid.UUID) (*models.Beat, error) {
	panic("unimplemented")
}

func (stubCatalogService) CreateBeat(ctx context.Context, input catalog.BeatInput) (*models.Beat, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateBeat(ctx context.Context, id uuid.UUID, input catalog.BeatInput) (*models.Beat, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteBeat(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) SetSold(ctx context.Context, id uuid.UUID, sold bool) (*models.Beat, error) {
	panic("unimplemented")
}

type stubDropsService struct{}

func (stubDropsService) ListActive(ctx context.Context) ([]models.Drop, error) {
	return nil, nil
}

func (stubDropsService) GetBySlug(ctx context.Context, slug string) (*models.Drop, error) {
	panic("unimplemented")
}

func (stubDropsService) AdminList(ctx context.Context) ([]models.Drop, error) {
	return nil, nil
}

func (stubDropsService) CreateDrop(ctx context.Context, input drops.DropInput) (*models.Drop, error) {
	panic("unimplemented")
}

func (stubDropsService) UpdateDrop(ctx context.Context, id uuid.UUID, input drops.DropInput) (*models.Drop, error) {
	panic("unimplemented")
}

func (stubDropsService) DeleteDrop(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubContentService struct{}

func (stubContentService) GetSetting(ctx context.Context, key string) (*models.SiteSetting, error) {
	panic("unimplemented")
}

func (stubContentService) ListSettings(ctx context.Context) ([]models.SiteSetting, error) {
	return nil, nil
}

func (stubContentService) PutSetting(ctx context.Context, key string, value map[string]any) (*models.SiteSetting, error) {
	panic("unimplemented")
}

func (stubContentService) ListFAQ(ctx context.Context, publishedOnly bool) ([]models.FAQItem, error) {
	return nil, nil
}

func (stubContentService) CreateFAQ(ctx context.Context, input content.FAQInput) (*models.FAQItem, error) {
	panic("unimplemented")
}

func (stubContentService) UpdateFAQ(ctx context.Context, id uuid.UUID, input content.FAQInput) (*models.FAQItem, error) {
	panic("unimplemented")
}

func (stubContentService) DeleteFAQ(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) GetCart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return &cart.Cart{SessionID: sessionID}, nil
}

func (stubCartService) AddItem(ctx context.Context, sessionID string, input cart.AddItemInput) (*cart.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, sessionID string, itemID uuid.UUID) (*cart.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, sessionID string) error {
	panic("unimplemented")
}

type stubFulfillmentService struct{}

func (stubFulfillmentService) BuildCartSession(ctx context.Context, input fulfillment.CartCheckoutInput) (*fulfillment.CheckoutSession, error) {
	panic("unimplemented")
}

func (stubFulfillmentService) BuildBuyNowSession(ctx context.Context, input fulfillment.BuyNowInput) (*fulfillment.CheckoutSession, error) {
	panic("unimplemented")
}

func (stubFulfillmentService) ConfirmCheckout(ctx context.Context, sessionID string) (*fulfillment.Confirmation, error) {
	panic("unimplemented")
}

func (stubFulfillmentService) CompleteFromWebhook(ctx context.Context, sessionID string) error {
	panic("unimplemented")
}

func (stubFulfillmentService) SendDeliveryEmail(ctx context.Context, sessionID string) error {
	panic("unimplemented")
}

type stubAssetsService struct{}

func (stubAssetsService) ResolveSingle(ctx context.Context, slug string, kind enums.DownloadKind) (*assets.FileDownload, error) {
	panic("unimplemented")
}

func (stubAssetsService) WriteBundle(ctx context.Context, w io.Writer, slug string) error {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) List(ctx context.Context) ([]models.Order, error) {
	return nil, nil
}

func (stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) OverrideStatus(ctx context.Context, id uuid.UUID, input ordersvc.StatusInput) (*models.Order, error) {
	panic("unimplemented")
}

type stubAdminsService struct{}

func (stubAdminsService) Login(ctx context.Context, req admins.LoginRequest) (*admins.LoginResponse, error) {
	return &admins.LoginResponse{}, nil
}

func (stubAdminsService) Register(ctx context.Context, req admins.RegisterRequest) (*admins.AdminProfile, error) {
	return &admins.AdminProfile{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "routing-test-secret",
			Issuer:            "beatstore-test",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		Services{
			Catalog:     stubCatalogService{},
			Drops:       stubDropsService{},
			Content:     stubContentService{},
			Cart:        stubCartService{},
			Fulfillment: stubFulfillmentService{},
			Assets:      stubAssetsService{},
			Orders:      stubOrdersService{},
			Admins:      stubAdminsService{},
		},
		(*pkgstripe.Client)(nil),
		nil,
		nil,
		metrics.NewFulfillmentMetrics(prometheus.NewRegistry()),
		prometheus.NewRegistry(),
	)
}

func TestHealthLiveServed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPublicCatalogServed(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{"/api/v1/beats", "/api/v1/drops", "/api/v1/faq"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestMetricsEndpointServed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestAdminGroupRejectsMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/beats", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAdminGroupAcceptsMintedToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		AdminID: uuid.New(),
		Email:   "admin@osinbeats.com",
		JTI:     uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/beats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token got %d", resp.Code)
	}
}

func TestAdminLoginRouteServed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	// Empty body fails validation, proving the route is wired without the
	// rate limiter touching the nil redis client.
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty login body got %d", resp.Code)
	}
}

func TestAdminRegisterRouteOnlyOutsideProduction(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty register body got %d", resp.Code)
	}

	prodCfg := testConfig()
	prodCfg.App.Env = config.AppEnvProd
	prodRouter := newTestRouter(prodCfg)
	resp = httptest.NewRecorder()
	prodRouter.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for register in production got %d", resp.Code)
	}
}
