package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docfixer-backend/internal/users"
)

// Store persists processed-file records and enforces the period limit.
type Store interface {
	// CountSince returns how many records the user has at or after since.
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)

	// Reserve atomically counts the user's records since the period start
	// and inserts a new one, failing with ErrLimitReached when the count is
	// already at limit. The count and insert happen under the same lock so
	// concurrent requests cannot both slip under the cap.
	Reserve(ctx context.Context, rec Record, since time.Time, limit int) error
}

// Service applies plan limits over a Store.
type Service struct {
	store  Store
	limits PlanLimits
	now    func() time.Time
}

func NewService(store Store, limits PlanLimits) *Service {
	return &Service{store: store, limits: limits, now: time.Now}
}

// Check reports whether the user has quota left this period. It is advisory:
// Reserve makes the authoritative decision.
func (s *Service) Check(ctx context.Context, userID, plan string) error {
	limit := s.limitFor(plan)
	used, err := s.store.CountSince(ctx, userID, s.periodStart())
	if err != nil {
		return fmt.Errorf("count usage: %w", err)
	}
	if used >= limit {
		return s.denial(plan)
	}
	return nil
}

// Reserve records one processed file, enforcing the plan limit atomically.
func (s *Service) Reserve(ctx context.Context, rec Record, plan string) error {
	rec.CreatedAt = s.now().UTC()
	err := s.store.Reserve(ctx, rec, s.periodStart(), s.limitFor(plan))
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrLimitReached) {
		return s.denial(plan)
	}
	return fmt.Errorf("reserve usage: %w", err)
}

// Snapshot returns the user's current-period consumption.
func (s *Service) Snapshot(ctx context.Context, userID, plan string) (Snapshot, error) {
	start := s.periodStart()
	limit := s.limitFor(plan)
	used, err := s.store.CountSince(ctx, userID, start)
	if err != nil {
		return Snapshot{}, fmt.Errorf("count usage: %w", err)
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		Plan:        plan,
		Limit:       limit,
		Used:        used,
		Remaining:   remaining,
		PeriodStart: start,
	}, nil
}

// The period is the current calendar month in UTC, so quotas reset on the
// first of each month.
func (s *Service) periodStart() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *Service) limitFor(plan string) int {
	if plan == users.PlanPro {
		return s.limits.Pro
	}
	return s.limits.Free
}

func (s *Service) denial(plan string) error {
	if plan == users.PlanPro {
		return ErrRateLimited
	}
	return ErrUpgradeRequired
}
