package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osinbeats/beatstore-backend/api/controllers"
	webhookcontrollers "github.com/osinbeats/beatstore-backend/api/controllers/webhooks"
	"github.com/osinbeats/beatstore-backend/api/middleware"
	"github.com/osinbeats/beatstore-backend/internal/admins"
	"github.com/osinbeats/beatstore-backend/internal/assets"
	"github.com/osinbeats/beatstore-backend/internal/cart"
	"github.com/osinbeats/beatstore-backend/internal/catalog"
	"github.com/osinbeats/beatstore-backend/internal/content"
	"github.com/osinbeats/beatstore-backend/internal/drops"
	"github.com/osinbeats/beatstore-backend/internal/fulfillment"
	"github.com/osinbeats/beatstore-backend/internal/orders"
	stripewebhook "github.com/osinbeats/beatstore-backend/internal/webhooks/stripe"
	"github.com/osinbeats/beatstore-backend/pkg/config"
	"github.com/osinbeats/beatstore-backend/pkg/db"
	"github.com/osinbeats/beatstore-backend/pkg/logger"
	"github.com/osinbeats/beatstore-backend/pkg/metrics"
	"github.com/osinbeats/beatstore-backend/pkg/redis"
	"github.com/osinbeats/beatstore-backend/pkg/stripe"
)

// Services bundles everything the HTTP surface depends on so the wiring in
// cmd/api stays a single call.
type Services struct {
	Catalog     catalog.Service
	Drops       drops.Service
	Content     content.Service
	Cart        cart.Service
	Fulfillment fulfillment.Service
	Assets      assets.Service
	Orders      orders.Service
	Admins      admins.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
	fulfillmentMetrics *metrics.FulfillmentMetrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/beats", func(r chi.Router) {
			r.Get("/", controllers.BeatList(svcs.Catalog, logg))
			r.Get("/{slug}", controllers.BeatDetail(svcs.Catalog, logg))
			r.Post("/{slug}/play", controllers.BeatPlay(svcs.Catalog, logg))
		})

		r.Route("/drops", func(r chi.Router) {
			r.Get("/", controllers.DropList(svcs.Drops, logg))
			r.Get("/{slug}", controllers.DropDetail(svcs.Drops, logg))
		})

		r.Get("/faq", controllers.FAQList(svcs.Content, logg))
		r.Get("/settings/{key}", controllers.SettingGet(svcs.Content, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svcs.Cart, logg))
			r.Post("/", controllers.CartAddItem(svcs.Cart, logg))
			r.Delete("/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/session", controllers.CheckoutSession(svcs.Fulfillment, logg))
			r.Post("/buy-now", controllers.CheckoutBuyNow(svcs.Fulfillment, logg))
			r.Get("/status", controllers.CheckoutStatus(svcs.Fulfillment, logg))
			r.Post("/email", controllers.CheckoutEmail(svcs.Fulfillment, logg))
		})

		r.Get("/download", controllers.Download(svcs.Assets, fulfillmentMetrics, logg))

		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, fulfillmentMetrics, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/auth/login", controllers.AdminLogin(svcs.Admins, logg))

		if !cfg.App.IsProd() {
			r.Post("/auth/register", controllers.AdminRegister(svcs.Admins, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Route("/beats", func(r chi.Router) {
				r.Get("/", controllers.AdminBeatList(svcs.Catalog, logg))
				r.Post("/", controllers.AdminBeatCreate(svcs.Catalog, logg))
				r.Get("/{beatId}", controllers.AdminBeatGet(svcs.Catalog, logg))
				r.Put("/{beatId}", controllers.AdminBeatUpdate(svcs.Catalog, logg))
				r.Delete("/{beatId}", controllers.AdminBeatDelete(svcs.Catalog, logg))
				r.Post("/{beatId}/sold", controllers.AdminBeatSetSold(svcs.Catalog, logg))
			})

			r.Route("/drops", func(r chi.Router) {
				r.Get("/", controllers.AdminDropList(svcs.Drops, logg))
				r.Post("/", controllers.AdminDropCreate(svcs.Drops, logg))
				r.Put("/{dropId}", controllers.AdminDropUpdate(svcs.Drops, logg))
				r.Delete("/{dropId}", controllers.AdminDropDelete(svcs.Drops, logg))
			})

			r.Route("/faq", func(r chi.Router) {
				r.Get("/", controllers.AdminFAQList(svcs.Content, logg))
				r.Post("/", controllers.AdminFAQCreate(svcs.Content, logg))
				r.Put("/{faqId}", controllers.AdminFAQUpdate(svcs.Content, logg))
				r.Delete("/{faqId}", controllers.AdminFAQDelete(svcs.Content, logg))
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", controllers.AdminSettingList(svcs.Content, logg))
				r.Put("/{key}", controllers.AdminSettingPut(svcs.Content, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(svcs.Orders, logg))
				r.Get("/{orderId}", controllers.AdminOrderGet(svcs.Orders, logg))
				r.Post("/{orderId}/status", controllers.AdminOrderStatus(svcs.Orders, logg))
			})
		})
	})

	return r
}
