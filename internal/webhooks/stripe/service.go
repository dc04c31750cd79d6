package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
)

type fulfiller interface {
	CompleteFromWebhook(ctx context.Context, sessionID string) error
}

// Service routes verified Stripe events into fulfillment. Signature
// verification and event-id dedup happen at the controller; by the time an
// event reaches HandleEvent it is trusted and first-seen.
type Service struct {
	fulfillment fulfiller
}

func NewService(fulfillment fulfiller) (*Service, error) {
	if fulfillment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service required")
	}
	return &Service{fulfillment: fulfillment}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		if session.ID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
		}
		return s.fulfillment.CompleteFromWebhook(ctx, session.ID)
	default:
		// Unhandled event types are acknowledged so Stripe stops
		// redelivering them.
		return nil
	}
}
