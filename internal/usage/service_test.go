package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"docfixer-backend/internal/users"
)

func newTestService(limits PlanLimits, now time.Time) *Service {
	svc := NewService(NewMemoryStore(), limits)
	svc.now = func() time.Time { return now }
	return svc
}

func reserveN(t *testing.T, svc *Service, userID, plan string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := Record{ID: "rec", UserID: userID, FileName: "f.docx"}
		if err := svc.Reserve(context.Background(), rec, plan); err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
	}
}

func TestReserveEnforcesFreeLimit(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(PlanLimits{Free: 3, Pro: 1000}, now)

	reserveN(t, svc, "u1", users.PlanFree, 3)

	err := svc.Reserve(context.Background(), Record{ID: "rec", UserID: "u1"}, users.PlanFree)
	if !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("err = %v, want ErrUpgradeRequired", err)
	}

	snap, err := svc.Snapshot(context.Background(), "u1", users.PlanFree)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Used != 3 || snap.Remaining != 0 {
		t.Errorf("snapshot = %+v, want used 3 remaining 0", snap)
	}
}

func TestReserveEnforcesProLimit(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(PlanLimits{Free: 3, Pro: 2}, now)

	reserveN(t, svc, "u1", users.PlanPro, 2)

	err := svc.Reserve(context.Background(), Record{ID: "rec", UserID: "u1"}, users.PlanPro)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestCheckReportsDenialWithoutConsuming(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(PlanLimits{Free: 1, Pro: 1000}, now)

	if err := svc.Check(context.Background(), "u1", users.PlanFree); err != nil {
		t.Fatalf("check with quota left: %v", err)
	}
	reserveN(t, svc, "u1", users.PlanFree, 1)
	if err := svc.Check(context.Background(), "u1", users.PlanFree); !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("err = %v, want ErrUpgradeRequired", err)
	}

	snap, _ := svc.Snapshot(context.Background(), "u1", users.PlanFree)
	if snap.Used != 1 {
		t.Errorf("Check must not consume quota: used = %d", snap.Used)
	}
}

func TestQuotaResetsOnNewMonth(t *testing.T) {
	march := time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC)
	svc := newTestService(PlanLimits{Free: 3, Pro: 1000}, march)

	reserveN(t, svc, "u1", users.PlanFree, 3)
	if err := svc.Check(context.Background(), "u1", users.PlanFree); !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("err = %v, want ErrUpgradeRequired", err)
	}

	april := time.Date(2026, time.April, 1, 0, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return april }

	if err := svc.Check(context.Background(), "u1", users.PlanFree); err != nil {
		t.Fatalf("check after month rollover: %v", err)
	}
	snap, err := svc.Snapshot(context.Background(), "u1", users.PlanFree)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Used != 0 {
		t.Errorf("used after rollover = %d, want 0", snap.Used)
	}
	want := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !snap.PeriodStart.Equal(want) {
		t.Errorf("period start = %v, want %v", snap.PeriodStart, want)
	}
}

func TestUnknownPlanGetsFreeLimit(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(PlanLimits{Free: 2, Pro: 1000}, now)

	snap, err := svc.Snapshot(context.Background(), "u1", "mystery")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Limit != 2 {
		t.Errorf("limit = %d, want free limit 2", snap.Limit)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(PlanLimits{Free: 1, Pro: 1000}, now)

	reserveN(t, svc, "u1", users.PlanFree, 1)
	if err := svc.Reserve(context.Background(), Record{ID: "rec", UserID: "u2"}, users.PlanFree); err != nil {
		t.Fatalf("reserve for second user: %v", err)
	}
}
