package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docfixer-backend/internal/shared/auth"
)

const minPasswordLen = 6

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidInput means the signup payload failed validation.
	ErrInvalidInput = errors.New("invalid signup input")
)

// Service implements account signup, login, and lookups over a Repo.
type Service struct {
	repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Signup registers a new account on the free plan.
func (s *Service) Signup(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Plan:         PlanFree,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login verifies credentials and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get looks up an account by ID.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Upgrade moves an account to the pro plan and remembers its billing
// customer reference.
func (s *Service) Upgrade(ctx context.Context, id, stripeCustomerID string) error {
	if err := s.repo.UpdatePlan(ctx, id, PlanPro); err != nil {
		return err
	}
	if stripeCustomerID != "" {
		if err := s.repo.SetStripeCustomerID(ctx, id, stripeCustomerID); err != nil {
			return err
		}
	}
	return nil
}

// SetStripeCustomerID stores the billing customer reference for an account.
func (s *Service) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	return s.repo.SetStripeCustomerID(ctx, id, customerID)
}
