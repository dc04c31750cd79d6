package payments

import (
	"context"
	"testing"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
)

type stubSessionAPI struct {
	created   *stripe.CheckoutSessionCreateParams
	retrieved string
	result    *stripe.CheckoutSession
	err       error
}

func (s *stubSessionAPI) Create(_ context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	s.created = params
	return s.result, s.err
}

func (s *stubSessionAPI) Retrieve(_ context.Context, id string, _ *stripe.CheckoutSessionRetrieveParams) (*stripe.CheckoutSession, error) {
	s.retrieved = id
	return s.result, s.err
}

func validInput() CreateSessionInput {
	return CreateSessionInput{
		Currency: "pln",
		LineItems: []LineItem{
			{Name: "Midnight Dreams - WAV License", AmountCents: 4999},
		},
		Metadata:       map[string]string{"cart_session_id": "cart-1"},
		SuccessURL:     "https://shop.test/checkout/success?session={CHECKOUT_SESSION_ID}",
		CancelURL:      "https://shop.test/cart",
		PaymentMethods: []string{"card", "blik"},
	}
}

func TestCreateHostedSessionBuildsPaymentModeParams(t *testing.T) {
	api := &stubSessionAPI{result: &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://stripe.test/pay"}}
	gw := &stripeGateway{sessions: api}

	sess, err := gw.CreateHostedSession(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create hosted session: %v", err)
	}
	if sess.ID != "cs_test_1" || sess.URL != "https://stripe.test/pay" {
		t.Fatalf("unexpected session %+v", sess)
	}

	params := api.created
	if params == nil {
		t.Fatal("expected create params")
	}
	if got := stripe.StringValue(params.Mode); got != string(stripe.CheckoutSessionModePayment) {
		t.Fatalf("expected payment mode, got %q", got)
	}
	if got := stripe.StringValue(params.SuccessURL); got != "https://shop.test/checkout/success?session={CHECKOUT_SESSION_ID}" {
		t.Fatalf("unexpected success url %q", got)
	}
	if len(params.LineItems) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(params.LineItems))
	}
	item := params.LineItems[0]
	if got := stripe.Int64Value(item.PriceData.UnitAmount); got != 4999 {
		t.Fatalf("expected unit amount 4999, got %d", got)
	}
	if got := stripe.Int64Value(item.Quantity); got != 1 {
		t.Fatalf("expected default quantity 1, got %d", got)
	}
	if params.Metadata["cart_session_id"] != "cart-1" {
		t.Fatalf("metadata not forwarded: %v", params.Metadata)
	}
	if len(params.PaymentMethodTypes) != 2 {
		t.Fatalf("expected card+blik, got %v", params.PaymentMethodTypes)
	}
	if params.UIMode != nil {
		t.Fatal("hosted session must not set ui_mode")
	}
}

func TestCreateEmbeddedSessionSetsUIMode(t *testing.T) {
	api := &stubSessionAPI{result: &stripe.CheckoutSession{ID: "cs_test_2", ClientSecret: "cs_secret"}}
	gw := &stripeGateway{sessions: api}

	input := validInput()
	input.SuccessURL = ""
	input.CancelURL = ""

	sess, err := gw.CreateEmbeddedSession(context.Background(), input)
	if err != nil {
		t.Fatalf("create embedded session: %v", err)
	}
	if sess.ClientSecret != "cs_secret" {
		t.Fatalf("expected client secret, got %+v", sess)
	}

	params := api.created
	if got := stripe.StringValue(params.UIMode); got != string(stripe.CheckoutSessionUIModeEmbedded) {
		t.Fatalf("expected embedded ui mode, got %q", got)
	}
	if got := stripe.StringValue(params.RedirectOnCompletion); got != string(stripe.CheckoutSessionRedirectOnCompletionNever) {
		t.Fatalf("expected redirect_on_completion=never, got %q", got)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	gw := &stripeGateway{sessions: &stubSessionAPI{}}

	input := validInput()
	input.LineItems = nil
	_, err := gw.CreateHostedSession(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}

	input = validInput()
	input.LineItems[0].AmountCents = 0
	_, err = gw.CreateHostedSession(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}

func TestRetrieveSessionMapsCustomerDetails(t *testing.T) {
	api := &stubSessionAPI{result: &stripe.CheckoutSession{
		ID:            "cs_test_3",
		Status:        stripe.CheckoutSessionStatusComplete,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   14999,
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "buyer@example.com",
			Name:  "Ada Buyer",
		},
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_123"},
		Metadata:      map[string]string{"beat_slug": "midnight-dreams"},
	}}
	gw := &stripeGateway{sessions: api}

	sess, err := gw.RetrieveSession(context.Background(), "cs_test_3")
	if err != nil {
		t.Fatalf("retrieve session: %v", err)
	}
	if api.retrieved != "cs_test_3" {
		t.Fatalf("unexpected retrieved id %q", api.retrieved)
	}
	if !sess.Paid() {
		t.Fatalf("expected paid session, got status=%q payment=%q", sess.Status, sess.PaymentStatus)
	}
	if sess.CustomerEmail != "buyer@example.com" || sess.CustomerName != "Ada Buyer" {
		t.Fatalf("customer details not mapped: %+v", sess)
	}
	if sess.PaymentIntentID != "pi_123" {
		t.Fatalf("payment intent not mapped: %+v", sess)
	}
	if sess.AmountTotal != 14999 {
		t.Fatalf("amount not mapped: %d", sess.AmountTotal)
	}
}
