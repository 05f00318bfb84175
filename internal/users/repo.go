package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// Repo persists user accounts.
type Repo interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdatePlan(ctx context.Context, id, plan string) error
	SetStripeCustomerID(ctx context.Context, id, customerID string) error
}
