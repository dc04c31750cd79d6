package payments

import (
	"context"
)

// LineItem is one purchasable entry on a checkout session.
type LineItem struct {
	Name        string
	Description string
	ImageURL    string
	AmountCents int
	Quantity    int
}

// CreateSessionInput carries everything needed to open a checkout session.
type CreateSessionInput struct {
	Currency       string
	LineItems      []LineItem
	Metadata       map[string]string
	CustomerEmail  string
	SuccessURL     string
	CancelURL      string
	ReturnURL      string
	PaymentMethods []string
}

// Session is the gateway-neutral view of a checkout session.
type Session struct {
	ID              string
	URL             string
	ClientSecret    string
	Status          string
	PaymentStatus   string
	AmountTotal     int
	CustomerEmail   string
	CustomerName    string
	PaymentIntentID string
	Metadata        map[string]string
}

// Paid reports whether the session finished with a captured payment.
func (s *Session) Paid() bool {
	return s != nil && s.Status == "complete" && s.PaymentStatus == "paid"
}

// Gateway abstracts the payment provider so fulfillment can be tested
// without network calls.
type Gateway interface {
	// CreateHostedSession opens a provider-hosted payment page and returns
	// its redirect URL.
	CreateHostedSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	// CreateEmbeddedSession opens a session rendered inside the storefront
	// and returns its client secret.
	CreateEmbeddedSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	// RetrieveSession loads a session with its payment intent expanded.
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}
