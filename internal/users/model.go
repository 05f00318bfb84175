package users

import "time"

// Plans a user can be on.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User is an account holder.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Plan             string    `json:"plan"`
	StripeCustomerID string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}
