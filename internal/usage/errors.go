package usage

import "errors"

var (
	// ErrLimitReached is returned by stores when a reservation would exceed
	// the period limit.
	ErrLimitReached = errors.New("monthly limit reached")

	// ErrUpgradeRequired means a free user is out of quota.
	ErrUpgradeRequired = errors.New("upgrade required")

	// ErrRateLimited means a pro user is out of quota.
	ErrRateLimited = errors.New("rate limited")
)
