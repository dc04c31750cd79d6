package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/internal/catalog"
	"github.com/osinbeats/beatstore-backend/internal/notifier"
	"github.com/osinbeats/beatstore-backend/internal/payments"
	"github.com/osinbeats/beatstore-backend/pkg/config"
	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/enums"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
	"github.com/osinbeats/beatstore-backend/pkg/logger"
	"github.com/osinbeats/beatstore-backend/pkg/metrics"
)

// Stripe session metadata keys. The cart flow and the buy-now flow write
// different key sets; confirmation reads both.
const (
	metaCartSessionID = "cart_session_id"
	metaCustomerName  = "customer_name"
	metaItemsCount    = "items_count"
	metaBeatSlug      = "beat_slug"
	metaBeatID        = "beat_id"
	metaBeatTitle     = "beat_title"
	metaLicenseType   = "license_type"
)

// CartCheckoutInput starts a hosted checkout for everything in a cart
// session. PaymentMethod is an optional hint; empty means card plus blik.
type CartCheckoutInput struct {
	CartSessionID string              `json:"cart_session_id" validate:"required"`
	CustomerEmail string              `json:"customer_email" validate:"required,email"`
	CustomerName  string              `json:"customer_name" validate:"required"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
}

// BuyNowInput starts an embedded checkout for a single beat and license.
type BuyNowInput struct {
	BeatID        uuid.UUID         `json:"beat_id" validate:"required"`
	LicenseTier   enums.LicenseTier `json:"license_tier" validate:"required"`
	CustomerEmail string            `json:"customer_email" validate:"required,email"`
	CustomerName  string            `json:"customer_name" validate:"required"`
}

// CheckoutSession is what the storefront needs to hand the customer over to
// the gateway. RedirectURL is set for hosted sessions, ClientSecret for
// embedded ones.
type CheckoutSession struct {
	SessionID    string `json:"session_id"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// Confirmation is the success-page poll response. DownloadURL is only set
// once the session is paid and an order row exists.
type Confirmation struct {
	Status          string            `json:"status"`
	LicenseTier     enums.LicenseTier `json:"license_tier,omitempty"`
	BeatSlug        string            `json:"beat_slug,omitempty"`
	CustomerEmail   string            `json:"customer_email,omitempty"`
	AmountPaidCents int               `json:"amount_paid_cents,omitempty"`
	DownloadURL     string            `json:"download_url,omitempty"`
}

type cartReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error)
}

type beatStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Beat, error)
	FindBySlug(ctx context.Context, slug string) (*models.Beat, error)
	MarkSold(ctx context.Context, id uuid.UUID) error
}

type orderLedger interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error)
	UpsertConfirmation(ctx context.Context, order *models.Order) (*models.Order, bool, error)
}

// Service orchestrates the order pipeline: checkout session build, payment
// confirmation from both the webhook and the success-page poll, the sold
// flip for exclusive tiers, and delivery mail.
type Service interface {
	// BuildCartSession opens a hosted checkout for a cart and writes the
	// pending order row.
	BuildCartSession(ctx context.Context, input CartCheckoutInput) (*CheckoutSession, error)
	// BuildBuyNowSession opens an embedded checkout for a single beat.
	BuildBuyNowSession(ctx context.Context, input BuyNowInput) (*CheckoutSession, error)
	// ConfirmCheckout is the success-page poll. It records the confirmation
	// when the session is paid but never sends mail; the client requests
	// that separately.
	ConfirmCheckout(ctx context.Context, sessionID string) (*Confirmation, error)
	// CompleteFromWebhook records the confirmation for a completed-session
	// event and sends the delivery email. Mail failure is logged, not
	// returned.
	CompleteFromWebhook(ctx context.Context, sessionID string) error
	// SendDeliveryEmail re-sends the delivery mail for a completed order.
	SendDeliveryEmail(ctx context.Context, sessionID string) error
}

type service struct {
	carts    cartReader
	beats    beatStore
	orders   orderLedger
	gateway  payments.Gateway
	notifier notifier.Service
	metrics  *metrics.FulfillmentMetrics
	logg     *logger.Logger
	appCfg   config.AppConfig
	checkout config.CheckoutConfig
}

// NewService builds the fulfillment orchestrator.
func NewService(
	carts cartReader,
	beats beatStore,
	orders orderLedger,
	gateway payments.Gateway,
	notif notifier.Service,
	fm *metrics.FulfillmentMetrics,
	logg *logger.Logger,
	appCfg config.AppConfig,
	checkoutCfg config.CheckoutConfig,
) (Service, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart reader required")
	}
	if beats == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "beat store required")
	}
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order ledger required")
	}
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment gateway required")
	}
	if notif == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifier required")
	}
	if fm == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment metrics required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		carts:    carts,
		beats:    beats,
		orders:   orders,
		gateway:  gateway,
		notifier: notif,
		metrics:  fm,
		logg:     logg,
		appCfg:   appCfg,
		checkout: checkoutCfg,
	}, nil
}

func (s *service) BuildCartSession(ctx context.Context, input CartCheckoutInput) (*CheckoutSession, error) {
	email, name, err := normalizeCustomer(input.CustomerEmail, input.CustomerName)
	if err != nil {
		return nil, err
	}
	cartSessionID := strings.TrimSpace(input.CartSessionID)
	if cartSessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session id required")
	}

	items, err := s.carts.ListBySession(ctx, cartSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lineItems := make([]payments.LineItem, 0, len(items))
	total := 0
	var firstBeat *models.Beat
	for i, item := range items {
		beat, err := s.loadPayableBeat(ctx, item.BeatID, item.LicenseTier)
		if err != nil {
			return nil, err
		}
		listed, err := catalog.PriceForTier(beat, item.LicenseTier)
		if err != nil {
			return nil, err
		}
		if listed != item.PriceCents {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("price for %q changed since it was added to the cart", beat.Title))
		}
		if i == 0 {
			firstBeat = beat
		}
		lineItems = append(lineItems, payments.LineItem{
			Name:        beat.Title + " - " + item.LicenseTier.Label(),
			Description: item.LicenseTier.Label(),
			ImageURL:    derefString(beat.CoverImageURL),
			AmountCents: item.PriceCents,
			Quantity:    1,
		})
		total += item.PriceCents
	}

	// Only the first line's beat and license survive into metadata; the
	// pipeline downstream resolves a single primary item per order.
	firstTier := items[0].LicenseTier
	sess, err := s.gateway.CreateHostedSession(ctx, payments.CreateSessionInput{
		Currency:  s.checkout.Currency,
		LineItems: lineItems,
		Metadata: map[string]string{
			metaCartSessionID: cartSessionID,
			metaCustomerName:  name,
			metaItemsCount:    strconv.Itoa(len(items)),
			metaBeatID:        firstBeat.ID.String(),
			metaBeatTitle:     firstBeat.Title,
			metaBeatSlug:      firstBeat.Slug,
			metaLicenseType:   firstTier.String(),
		},
		CustomerEmail:  email,
		SuccessURL:     s.checkout.SuccessURL(s.appCfg.BaseURL),
		CancelURL:      s.checkout.CancelURL(s.appCfg.BaseURL),
		PaymentMethods: paymentMethods(input.PaymentMethod),
	})
	if err != nil {
		return nil, err
	}

	if err := s.createPendingOrder(ctx, sess.ID, firstBeat.ID, firstTier, total, email, name); err != nil {
		return nil, err
	}
	s.metrics.IncCheckoutSession("cart")

	return &CheckoutSession{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

func (s *service) BuildBuyNowSession(ctx context.Context, input BuyNowInput) (*CheckoutSession, error) {
	email, name, err := normalizeCustomer(input.CustomerEmail, input.CustomerName)
	if err != nil {
		return nil, err
	}
	if input.BeatID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beat id required")
	}
	if !input.LicenseTier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown license tier")
	}

	beat, err := s.loadPayableBeat(ctx, input.BeatID, input.LicenseTier)
	if err != nil {
		return nil, err
	}
	price, err := catalog.PriceForTier(beat, input.LicenseTier)
	if err != nil {
		return nil, err
	}

	sess, err := s.gateway.CreateEmbeddedSession(ctx, payments.CreateSessionInput{
		Currency: s.checkout.Currency,
		LineItems: []payments.LineItem{{
			Name:        beat.Title + " - " + input.LicenseTier.Label(),
			Description: input.LicenseTier.Label(),
			ImageURL:    derefString(beat.CoverImageURL),
			AmountCents: price,
			Quantity:    1,
		}},
		Metadata: map[string]string{
			metaBeatID:      beat.ID.String(),
			metaBeatTitle:   beat.Title,
			metaLicenseType: input.LicenseTier.String(),
		},
		CustomerEmail: email,
	})
	if err != nil {
		return nil, err
	}

	if err := s.createPendingOrder(ctx, sess.ID, beat.ID, input.LicenseTier, price, email, name); err != nil {
		return nil, err
	}
	s.metrics.IncCheckoutSession("buy_now")

	return &CheckoutSession{SessionID: sess.ID, ClientSecret: sess.ClientSecret}, nil
}

func (s *service) ConfirmCheckout(ctx context.Context, sessionID string) (*Confirmation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Paid() {
		return &Confirmation{Status: sess.Status}, nil
	}

	order, slug, tier, err := s.recordConfirmation(ctx, sess)
	if err != nil {
		return nil, err
	}

	conf := &Confirmation{
		Status:          order.Status.String(),
		LicenseTier:     tier,
		BeatSlug:        slug,
		CustomerEmail:   order.CustomerEmail,
		AmountPaidCents: order.PricePaidCents,
	}
	if slug != "" {
		conf.DownloadURL = s.downloadURL(slug, tier)
	}
	return conf, nil
}

func (s *service) CompleteFromWebhook(ctx context.Context, sessionID string) error {
	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return err
	}
	ctx = s.logg.WithCheckoutSession(ctx, sess.ID)
	if !sess.Paid() {
		// Completed events for async payment methods can arrive before
		// the charge settles; the paid event follows later.
		s.logg.Warn(ctx, "ignoring completed session that is not paid")
		return nil
	}

	order, slug, tier, err := s.recordConfirmation(ctx, sess)
	if err != nil {
		return err
	}

	email := notifier.DeliveryEmail{
		To:           order.CustomerEmail,
		CustomerName: derefString(order.CustomerName),
		BeatTitle:    s.beatTitle(order, sess, slug),
		LicenseLabel: tier.Label(),
		DownloadLink: s.successURL(sess.ID),
	}
	if err := s.notifier.SendDeliveryEmail(ctx, email); err != nil {
		s.metrics.IncEmailSent("error")
		s.logg.Error(ctx, "delivery email failed", err)
		return nil
	}
	s.metrics.IncEmailSent("ok")
	return nil
}

func (s *service) SendDeliveryEmail(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	order, err := s.orders.FindByStripeSessionID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.Status != enums.OrderStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeConflict, "order is not completed")
	}

	title := ""
	if order.Beat != nil {
		title = order.Beat.Title
	}
	email := notifier.DeliveryEmail{
		To:           order.CustomerEmail,
		CustomerName: derefString(order.CustomerName),
		BeatTitle:    title,
		LicenseLabel: order.LicenseTier.Label(),
		DownloadLink: s.successURL(sessionID),
	}
	if err := s.notifier.SendDeliveryEmail(ctx, email); err != nil {
		s.metrics.IncEmailSent("error")
		return err
	}
	s.metrics.IncEmailSent("ok")
	return nil
}

// recordConfirmation is the single place both confirmation entry points
// converge on. The upsert is keyed on the session id so webhook and poll
// arriving in any order, any number of times, leave exactly one order row.
// Returns the persisted order plus the resolved slug and tier.
func (s *service) recordConfirmation(ctx context.Context, sess *payments.Session) (*models.Order, string, enums.LicenseTier, error) {
	existing, err := s.orders.FindByStripeSessionID(ctx, sess.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	tier := s.resolveTier(ctx, sess, existing)
	beat := s.resolveBeat(ctx, sess, existing)

	order := &models.Order{
		CustomerEmail:   sess.CustomerEmail,
		LicenseTier:     tier,
		PricePaidCents:  sess.AmountTotal,
		StripeSessionID: &sess.ID,
		Status:          enums.OrderStatusCompleted,
	}
	if beat != nil {
		order.BeatID = &beat.ID
	} else if existing != nil {
		order.BeatID = existing.BeatID
	}
	if name := customerName(sess, existing); name != "" {
		order.CustomerName = &name
	}
	if sess.PaymentIntentID != "" {
		order.StripePaymentID = &sess.PaymentIntentID
	}
	if order.CustomerEmail == "" && existing != nil {
		order.CustomerEmail = existing.CustomerEmail
	}

	// The upsert reports whether this call moved the row to completed, so
	// racing confirmations cannot both claim the metrics increment.
	persisted, firstCompletion, err := s.orders.UpsertConfirmation(ctx, order)
	if err != nil {
		return nil, "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record confirmation")
	}

	if tier.IsExclusive() && beat != nil {
		// Set-to-true is monotonic, so racing confirmations are no-ops
		// after the first.
		if err := s.beats.MarkSold(ctx, beat.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark beat sold")
		}
	}

	if firstCompletion {
		s.metrics.ObserveOrderCompleted(persisted.PricePaidCents)
	}

	slug := sess.Metadata[metaBeatSlug]
	if slug == "" && beat != nil {
		slug = beat.Slug
	}
	return persisted, slug, tier, nil
}

// resolveTier prefers the session metadata and falls back to the order row.
func (s *service) resolveTier(ctx context.Context, sess *payments.Session, existing *models.Order) enums.LicenseTier {
	if raw := sess.Metadata[metaLicenseType]; raw != "" {
		if tier, err := enums.ParseLicenseTier(raw); err == nil {
			return tier
		}
		s.logg.Warn(s.logg.WithField(ctx, "license_type", raw), "unparseable license tier in session metadata")
	}
	if existing != nil {
		return existing.LicenseTier
	}
	return enums.LicenseTierMP3
}

// resolveBeat looks the beat up by metadata slug, then metadata id, then the
// pending order row. A miss is tolerated; the confirmation still lands.
func (s *service) resolveBeat(ctx context.Context, sess *payments.Session, existing *models.Order) *models.Beat {
	if slug := sess.Metadata[metaBeatSlug]; slug != "" {
		beat, err := s.beats.FindBySlug(ctx, slug)
		if err == nil {
			return beat
		}
		s.logg.Warn(s.logg.WithBeatSlug(ctx, slug), "session metadata slug did not resolve")
	}
	if raw := sess.Metadata[metaBeatID]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			if beat, err := s.beats.FindByID(ctx, id); err == nil {
				return beat
			}
		}
		s.logg.Warn(s.logg.WithField(ctx, "beat_id", raw), "session metadata beat id did not resolve")
	}
	if existing != nil && existing.BeatID != nil {
		if beat, err := s.beats.FindByID(ctx, *existing.BeatID); err == nil {
			return beat
		}
	}
	return nil
}

// loadPayableBeat enforces the catalog rules at checkout-build time:
// unpublished beats are invisible and a sold beat no longer sells
// exclusive tiers.
func (s *service) loadPayableBeat(ctx context.Context, id uuid.UUID, tier enums.LicenseTier) (*models.Beat, error) {
	beat, err := s.beats.FindByID(ctx, id)
	if catalog.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "beat is no longer available")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load beat")
	}
	if !beat.IsPublished {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "beat is no longer available")
	}
	if beat.IsSold && tier.IsExclusive() {
		return nil, pkgerrors.New(pkgerrors.CodeGone, "beat has already been sold exclusively")
	}
	return beat, nil
}

func (s *service) createPendingOrder(ctx context.Context, sessionID string, beatID uuid.UUID, tier enums.LicenseTier, totalCents int, email, name string) error {
	order := &models.Order{
		BeatID:          &beatID,
		CustomerEmail:   email,
		CustomerName:    &name,
		LicenseTier:     tier,
		PricePaidCents:  totalCents,
		StripeSessionID: &sessionID,
		Status:          enums.OrderStatusPending,
	}
	if _, err := s.orders.Create(ctx, order); err != nil {
		// The gateway session is left dangling; the customer simply never
		// pays it. No compensating cancellation.
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record pending order")
	}
	return nil
}

func (s *service) beatTitle(order *models.Order, sess *payments.Session, slug string) string {
	if order.Beat != nil {
		return order.Beat.Title
	}
	if title := sess.Metadata[metaBeatTitle]; title != "" {
		return title
	}
	return slug
}

func (s *service) successURL(sessionID string) string {
	base := strings.TrimRight(s.appCfg.BaseURL, "/")
	return base + s.checkout.SuccessPath + "?session=" + url.QueryEscape(sessionID)
}

func (s *service) downloadURL(slug string, tier enums.LicenseTier) string {
	base := strings.TrimRight(s.appCfg.BaseURL, "/")
	return fmt.Sprintf("%s/api/v1/download?slug=%s&type=%s", base, url.QueryEscape(slug), url.QueryEscape(tier.String()))
}

func normalizeCustomer(email, name string) (string, string, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "valid customer email required")
	}
	if name == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	return email, name, nil
}

func paymentMethods(hint enums.PaymentMethod) []string {
	if hint.IsValid() {
		return []string{hint.String()}
	}
	return []string{enums.PaymentMethodCard.String(), enums.PaymentMethodBlik.String()}
}

func customerName(sess *payments.Session, existing *models.Order) string {
	if sess.CustomerName != "" {
		return sess.CustomerName
	}
	if name := sess.Metadata[metaCustomerName]; name != "" {
		return name
	}
	if existing != nil && existing.CustomerName != nil {
		return *existing.CustomerName
	}
	return ""
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
