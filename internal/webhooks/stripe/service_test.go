package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
)

type stubFulfiller struct {
	sessions []string
	err      error
}

func (s *stubFulfiller) CompleteFromWebhook(_ context.Context, sessionID string) error {
	if s.err != nil {
		return s.err
	}
	s.sessions = append(s.sessions, sessionID)
	return nil
}

func checkoutEvent(t *testing.T, eventType stripe.EventType, sessionID string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"id": sessionID})
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_1",
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventDispatchesCompletedSession(t *testing.T) {
	fulfiller := &stubFulfiller{}
	service, err := NewService(fulfiller)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := checkoutEvent(t, stripe.EventTypeCheckoutSessionCompleted, "cs_test_1")
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(fulfiller.sessions) != 1 || fulfiller.sessions[0] != "cs_test_1" {
		t.Fatalf("expected one fulfillment call for cs_test_1, got %v", fulfiller.sessions)
	}
}

func TestHandleEventDispatchesAsyncPaymentSucceeded(t *testing.T) {
	fulfiller := &stubFulfiller{}
	service, err := NewService(fulfiller)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := checkoutEvent(t, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded, "cs_test_2")
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(fulfiller.sessions) != 1 {
		t.Fatalf("expected one fulfillment call, got %v", fulfiller.sessions)
	}
}

func TestHandleEventIgnoresUnrelatedTypes(t *testing.T) {
	fulfiller := &stubFulfiller{}
	service, err := NewService(fulfiller)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := checkoutEvent(t, stripe.EventTypeInvoicePaid, "cs_test_3")
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unrelated events must be acknowledged: %v", err)
	}
	if len(fulfiller.sessions) != 0 {
		t.Fatalf("fulfillment must not run for unrelated events, got %v", fulfiller.sessions)
	}
}

func TestHandleEventRejectsMissingData(t *testing.T) {
	service, err := NewService(&stubFulfiller{})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	err = service.HandleEvent(context.Background(), &stripe.Event{Type: stripe.EventTypeCheckoutSessionCompleted})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleEventRejectsSessionWithoutID(t *testing.T) {
	service, err := NewService(&stubFulfiller{})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := &stripe.Event{
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	err = service.HandleEvent(context.Background(), event)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type stubIdempotencyStore struct {
	keys map[string]bool
	err  error
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func TestIdempotencyGuardMarksFirstSeen(t *testing.T) {
	store := &stubIdempotencyStore{keys: map[string]bool{}}
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe-webhook")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("check and mark: %v", err)
	}
	if seen {
		t.Fatal("first delivery must not be reported seen")
	}

	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("check and mark: %v", err)
	}
	if !seen {
		t.Fatal("redelivery must be reported seen")
	}
}

func TestIdempotencyGuardDeleteAllowsRetry(t *testing.T) {
	store := &stubIdempotencyStore{keys: map[string]bool{}}
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe-webhook")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), "evt_2"); err != nil {
		t.Fatalf("check and mark: %v", err)
	}
	if err := guard.Delete(context.Background(), "evt_2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, err := guard.CheckAndMark(context.Background(), "evt_2")
	if err != nil {
		t.Fatalf("check and mark: %v", err)
	}
	if seen {
		t.Fatal("deleted event must be processable again")
	}
}
