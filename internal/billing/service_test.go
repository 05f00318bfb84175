package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stripe/stripe-go/v82"

	"docfixer-backend/internal/users"
)

func newTestService(t *testing.T, cfg Config) (*Service, *users.Service, users.User) {
	t.Helper()
	userSvc := users.NewService(users.NewMemoryRepo())
	u, err := userSvc.Signup(context.Background(), "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return NewService(cfg, userSvc), userSvc, u
}

func checkoutCompletedEvent(userID, customerID string) stripe.Event {
	raw := fmt.Sprintf(`{"id":"cs_1","customer":{"id":%q},"metadata":{"user_id":%q}}`, customerID, userID)
	return stripe.Event{
		ID:   "evt_1",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func TestHandleEventUpgradesUser(t *testing.T) {
	svc, userSvc, u := newTestService(t, Config{WebhookSecret: "whsec_test"})
	svc.verifyEvent = func(payload []byte, header, secret string) (stripe.Event, error) {
		if secret != "whsec_test" {
			t.Errorf("secret = %q", secret)
		}
		return checkoutCompletedEvent(u.ID, "cus_123"), nil
	}

	if err := svc.HandleEvent(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	after, err := userSvc.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Plan != users.PlanPro {
		t.Errorf("plan = %q, want %q", after.Plan, users.PlanPro)
	}
	if after.StripeCustomerID != "cus_123" {
		t.Errorf("customer = %q, want cus_123", after.StripeCustomerID)
	}
}

func TestHandleEventRejectsBadSignature(t *testing.T) {
	svc, userSvc, u := newTestService(t, Config{WebhookSecret: "whsec_test"})
	svc.verifyEvent = func(payload []byte, header, secret string) (stripe.Event, error) {
		return stripe.Event{}, errors.New("signature mismatch")
	}

	err := svc.HandleEvent(context.Background(), []byte("{}"), "bad-sig")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}

	after, _ := userSvc.Get(context.Background(), u.ID)
	if after.Plan != users.PlanFree {
		t.Errorf("plan changed on rejected event: %q", after.Plan)
	}
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	svc, userSvc, u := newTestService(t, Config{WebhookSecret: "whsec_test"})
	svc.verifyEvent = func(payload []byte, header, secret string) (stripe.Event, error) {
		return stripe.Event{ID: "evt_2", Type: "invoice.paid", Data: &stripe.EventData{Raw: json.RawMessage(`{}`)}}, nil
	}

	if err := svc.HandleEvent(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	after, _ := userSvc.Get(context.Background(), u.ID)
	if after.Plan != users.PlanFree {
		t.Errorf("plan changed on ignored event: %q", after.Plan)
	}
}

func TestHandleEventRequiresUserMetadata(t *testing.T) {
	svc, _, _ := newTestService(t, Config{WebhookSecret: "whsec_test"})
	svc.verifyEvent = func(payload []byte, header, secret string) (stripe.Event, error) {
		return checkoutCompletedEvent("", "cus_123"), nil
	}

	if err := svc.HandleEvent(context.Background(), []byte("{}"), "sig"); err == nil {
		t.Fatal("expected error for missing user_id metadata")
	}
}

func TestHandleEventNotConfigured(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	if err := svc.HandleEvent(context.Background(), []byte("{}"), "sig"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	cfg := Config{
		SecretKey:   "sk_test",
		ProPriceID:  "price_pro",
		FrontendURL: "https://app.example.com/",
	}
	svc, userSvc, u := newTestService(t, cfg)

	customerCalls := 0
	svc.createCustomer = func(params *stripe.CustomerParams) (*stripe.Customer, error) {
		customerCalls++
		if params.Email == nil || *params.Email != u.Email {
			t.Errorf("customer email = %v", params.Email)
		}
		return &stripe.Customer{ID: "cus_123"}, nil
	}
	svc.createSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		if params.Customer == nil || *params.Customer != "cus_123" {
			t.Errorf("session customer = %v", params.Customer)
		}
		if len(params.LineItems) != 1 || *params.LineItems[0].Price != "price_pro" {
			t.Errorf("line items = %+v", params.LineItems)
		}
		if params.Metadata["user_id"] != u.ID {
			t.Errorf("metadata user_id = %q", params.Metadata["user_id"])
		}
		if *params.SuccessURL != "https://app.example.com/billing/success?session_id={CHECKOUT_SESSION_ID}" {
			t.Errorf("success url = %q", *params.SuccessURL)
		}
		return &stripe.CheckoutSession{URL: "https://checkout.stripe.com/pay/cs_1"}, nil
	}

	url, err := svc.CreateCheckoutSession(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if url != "https://checkout.stripe.com/pay/cs_1" {
		t.Errorf("url = %q", url)
	}

	after, _ := userSvc.Get(context.Background(), u.ID)
	if after.StripeCustomerID != "cus_123" {
		t.Errorf("customer not persisted: %q", after.StripeCustomerID)
	}

	// Second checkout reuses the stored customer.
	if _, err := svc.CreateCheckoutSession(context.Background(), u.ID); err != nil {
		t.Fatalf("second CreateCheckoutSession: %v", err)
	}
	if customerCalls != 1 {
		t.Errorf("customer created %d times, want 1", customerCalls)
	}
}

func TestCreateCheckoutSessionNotConfigured(t *testing.T) {
	svc, _, u := newTestService(t, Config{})
	if _, err := svc.CreateCheckoutSession(context.Background(), u.ID); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
