package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
	pkgstripe "github.com/osinbeats/beatstore-backend/pkg/stripe"
)

type checkoutSessionAPI interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	Retrieve(ctx context.Context, id string, params *stripe.CheckoutSessionRetrieveParams) (*stripe.CheckoutSession, error)
}

type stripeGateway struct {
	sessions checkoutSessionAPI
}

type v1SessionAPI struct {
	api *stripe.Client
}

func (a v1SessionAPI) Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	return a.api.V1CheckoutSessions.Create(ctx, params)
}

func (a v1SessionAPI) Retrieve(ctx context.Context, id string, params *stripe.CheckoutSessionRetrieveParams) (*stripe.CheckoutSession, error) {
	return a.api.V1CheckoutSessions.Retrieve(ctx, id, params)
}

// NewStripeGateway wraps the shared Stripe client as a payments Gateway.
func NewStripeGateway(client *pkgstripe.Client) (Gateway, error) {
	if client == nil || client.API() == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &stripeGateway{sessions: v1SessionAPI{api: client.API()}}, nil
}

func (g *stripeGateway) CreateHostedSession(ctx context.Context, input CreateSessionInput) (*Session, error) {
	params, err := buildCreateParams(input)
	if err != nil {
		return nil, err
	}
	if input.SuccessURL == "" || input.CancelURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "success and cancel urls required")
	}
	params.SuccessURL = stripe.String(input.SuccessURL)
	params.CancelURL = stripe.String(input.CancelURL)

	sess, err := g.sessions.Create(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return fromStripeSession(sess), nil
}

func (g *stripeGateway) CreateEmbeddedSession(ctx context.Context, input CreateSessionInput) (*Session, error) {
	params, err := buildCreateParams(input)
	if err != nil {
		return nil, err
	}
	params.UIMode = stripe.String(string(stripe.CheckoutSessionUIModeEmbedded))
	params.RedirectOnCompletion = stripe.String(string(stripe.CheckoutSessionRedirectOnCompletionNever))

	sess, err := g.sessions.Create(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create embedded checkout session")
	}
	return fromStripeSession(sess), nil
}

func (g *stripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	params := &stripe.CheckoutSessionRetrieveParams{}
	params.AddExpand("payment_intent")

	sess, err := g.sessions.Retrieve(ctx, sessionID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve checkout session")
	}
	return fromStripeSession(sess), nil
}

func buildCreateParams(input CreateSessionInput) (*stripe.CheckoutSessionCreateParams, error) {
	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item required")
	}
	if input.Currency == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency required")
	}

	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(input.LineItems))
	for _, item := range input.LineItems {
		if item.AmountCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item amount must be positive")
		}
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		productData := &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			productData.Description = stripe.String(item.Description)
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:    stripe.String(input.Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(int64(item.AmountCents)),
			},
			Quantity: stripe.Int64(int64(qty)),
		})
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: lineItems,
	}
	if len(input.PaymentMethods) > 0 {
		params.PaymentMethodTypes = stripe.StringSlice(input.PaymentMethods)
	}
	if input.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(input.CustomerEmail)
	}
	if input.ReturnURL != "" {
		params.ReturnURL = stripe.String(input.ReturnURL)
	}
	if len(input.Metadata) > 0 {
		params.Metadata = input.Metadata
	}
	return params, nil
}

func fromStripeSession(sess *stripe.CheckoutSession) *Session {
	if sess == nil {
		return nil
	}
	out := &Session{
		ID:            sess.ID,
		URL:           sess.URL,
		ClientSecret:  sess.ClientSecret,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   int(sess.AmountTotal),
		CustomerEmail: sess.CustomerEmail,
		Metadata:      sess.Metadata,
	}
	if sess.CustomerDetails != nil {
		if sess.CustomerDetails.Email != "" {
			out.CustomerEmail = sess.CustomerDetails.Email
		}
		out.CustomerName = sess.CustomerDetails.Name
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out
}
