package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"

	"docfixer-backend/internal/shared/telemetry"
	"docfixer-backend/internal/users"
)

var (
	// ErrNotConfigured means Stripe credentials are missing.
	ErrNotConfigured = errors.New("billing not configured")

	// ErrInvalidSignature means the webhook payload failed verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Config holds the Stripe settings.
type Config struct {
	SecretKey     string
	WebhookSecret string
	ProPriceID    string
	FrontendURL   string
}

// Service drives checkout and webhook-based plan upgrades. The Stripe calls
// are injectable so tests can run without credentials.
type Service struct {
	cfg   Config
	users *users.Service

	createCustomer func(*stripe.CustomerParams) (*stripe.Customer, error)
	createSession  func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	verifyEvent    func(payload []byte, header, secret string) (stripe.Event, error)
}

func NewService(cfg Config, users *users.Service) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{
		cfg:            cfg,
		users:          users,
		createCustomer: customer.New,
		createSession:  session.New,
		verifyEvent:    webhook.ConstructEvent,
	}
}

// CreateCheckoutSession starts a subscription checkout for the pro plan and
// returns the hosted checkout URL.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(s.cfg.SecretKey) == "" || strings.TrimSpace(s.cfg.ProPriceID) == "" {
		return "", ErrNotConfigured
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	customerID := u.StripeCustomerID
	if customerID == "" {
		params := &stripe.CustomerParams{
			Email: stripe.String(u.Email),
		}
		params.AddMetadata("user_id", u.ID)
		cust, err := s.createCustomer(params)
		if err != nil {
			return "", fmt.Errorf("create stripe customer: %w", err)
		}
		customerID = cust.ID
		if err := s.users.SetStripeCustomerID(ctx, u.ID, customerID); err != nil {
			return "", fmt.Errorf("store stripe customer: %w", err)
		}
	}

	frontend := strings.TrimRight(s.cfg.FrontendURL, "/")
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.ProPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(frontend + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(frontend + "/billing/cancel"),
	}
	params.AddMetadata("user_id", u.ID)

	sess, err := s.createSession(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// HandleEvent verifies and processes a webhook payload. Unknown event types
// are acknowledged without action.
func (s *Service) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	if strings.TrimSpace(s.cfg.WebhookSecret) == "" {
		return ErrNotConfigured
	}

	event, err := s.verifyEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	default:
		telemetry.Info("billing.event_ignored", map[string]any{"type": string(event.Type)})
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}

	userID := sess.Metadata["user_id"]
	if userID == "" {
		return errors.New("checkout session missing user_id metadata")
	}

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}

	if err := s.users.Upgrade(ctx, userID, customerID); err != nil {
		return fmt.Errorf("upgrade user %s: %w", userID, err)
	}

	telemetry.Info("billing.upgraded", map[string]any{
		"user_id":  userID,
		"customer": customerID,
		"event_id": event.ID,
	})
	return nil
}
