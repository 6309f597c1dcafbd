// Package app tests the rolling-window admission check.
package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
)

// fakeLedger holds usage events in memory, newest first.
type fakeLedger struct {
	events      []time.Time
	countErr    error
	appendErr   error
	appendCalls int
	countCalls  int
}

func (f *fakeLedger) CountRecent(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	f.countCalls++
	if f.countErr != nil {
		return nil, f.countErr
	}
	var out []time.Time
	for _, e := range f.events {
		if !e.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) Append(ctx context.Context, userID string) error {
	f.appendCalls++
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append([]time.Time{time.Now()}, f.events...)
	return nil
}

type fakeRoles struct {
	admin bool
	err   error
	calls int
}

func (f *fakeRoles) HasRole(ctx context.Context, userID string, role models.Role) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	if role == models.RoleAdmin {
		return f.admin, nil
	}
	return false, nil
}

var testNow = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func TestCheckQuotaAllowsFirstAnalysis(t *testing.T) {
	led := &fakeLedger{}
	dec := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 1, testNow)

	if !dec.Allowed {
		t.Fatalf("expected first analysis to be allowed")
	}
	if !dec.LastAnalysisAt.IsZero() {
		t.Fatalf("expected no last analysis, got %v", dec.LastAnalysisAt)
	}
}

func TestCheckQuotaDeniesAtLimit(t *testing.T) {
	last := testNow.Add(-1 * time.Hour)
	led := &fakeLedger{events: []time.Time{last}}

	dec := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 1, testNow)

	if dec.Allowed {
		t.Fatalf("expected denial at limit")
	}
	if want := 23 * time.Hour; dec.RetryAfter != want {
		t.Fatalf("expected retry after %v, got %v", want, dec.RetryAfter)
	}
	if !dec.LastAnalysisAt.Equal(last) {
		t.Fatalf("expected last analysis %v, got %v", last, dec.LastAnalysisAt)
	}
}

func TestCheckQuotaWindowSlides(t *testing.T) {
	// One second inside the window: still counted.
	led := &fakeLedger{events: []time.Time{testNow.Add(-QuotaWindow + time.Second)}}
	dec := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 1, testNow)
	if dec.Allowed {
		t.Fatalf("expected event just inside the window to deny")
	}
	if dec.RetryAfter != time.Second {
		t.Fatalf("expected retry after 1s, got %v", dec.RetryAfter)
	}

	// One second outside: expired, slot is free again.
	led = &fakeLedger{events: []time.Time{testNow.Add(-QuotaWindow - time.Second)}}
	dec = CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 1, testNow)
	if !dec.Allowed {
		t.Fatalf("expected expired event to free the slot")
	}
}

func TestCheckQuotaRetryAfterReachesZero(t *testing.T) {
	event := testNow.Add(-23 * time.Hour)
	led := &fakeLedger{events: []time.Time{event}}

	dec := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 1, testNow)
	if dec.Allowed {
		t.Fatalf("expected denial")
	}
	if dec.RetryAfter != time.Hour {
		t.Fatalf("expected retry after 1h, got %v", dec.RetryAfter)
	}

	// Re-checking later never increases the wait.
	later := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 1, testNow.Add(30*time.Minute))
	if later.Allowed {
		t.Fatalf("expected denial before expiry")
	}
	if later.RetryAfter >= dec.RetryAfter {
		t.Fatalf("expected retry to shrink, got %v then %v", dec.RetryAfter, later.RetryAfter)
	}

	// After the full wait the event has left the window.
	after := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 1, testNow.Add(time.Hour+time.Second))
	if !after.Allowed {
		t.Fatalf("expected allowance after retry interval elapsed")
	}
}

func TestCheckQuotaLimitTwo(t *testing.T) {
	events := []time.Time{
		testNow.Add(-1 * time.Hour),
		testNow.Add(-20 * time.Hour),
	}
	led := &fakeLedger{events: events}

	dec := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 2, testNow)
	if dec.Allowed {
		t.Fatalf("expected denial with two events and limit 2")
	}
	// The slot frees when the 2nd most recent event expires, not the newest.
	if want := 4 * time.Hour; dec.RetryAfter != want {
		t.Fatalf("expected retry after %v, got %v", want, dec.RetryAfter)
	}
	if !dec.LastAnalysisAt.Equal(events[0]) {
		t.Fatalf("expected newest event as last analysis")
	}

	led = &fakeLedger{events: events[:1]}
	dec = CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 2, testNow)
	if !dec.Allowed {
		t.Fatalf("expected allowance with one event and limit 2")
	}
	if !dec.LastAnalysisAt.Equal(events[0]) {
		t.Fatalf("expected last analysis to be reported on allow")
	}
}

func TestCheckQuotaAdminBypass(t *testing.T) {
	led := &fakeLedger{events: []time.Time{testNow.Add(-time.Minute)}}
	rolesDir := &fakeRoles{admin: true}

	dec := CheckQuota(context.Background(), led, rolesDir, "admin-1", 1, testNow)
	if !dec.Allowed {
		t.Fatalf("expected admin to bypass the limit")
	}
	if led.countCalls != 0 {
		t.Fatalf("expected admin check to skip the ledger, got %d reads", led.countCalls)
	}
}

func TestCheckQuotaRoleLookupFailureStillCounts(t *testing.T) {
	led := &fakeLedger{events: []time.Time{testNow.Add(-time.Minute)}}
	rolesDir := &fakeRoles{err: errors.New("roles table unavailable")}

	dec := CheckQuota(context.Background(), led, rolesDir, "user-1", 1, testNow)
	if dec.Allowed {
		t.Fatalf("expected role lookup failure to lose the bypass only")
	}
}

func TestCheckQuotaFailsOpenOnLedgerError(t *testing.T) {
	led := &fakeLedger{countErr: errors.New("connection refused")}

	dec := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 1, testNow)
	if !dec.Allowed {
		t.Fatalf("expected fail-open on ledger error")
	}
}

func TestCheckQuotaNonPositiveLimit(t *testing.T) {
	// A broken limit must never panic on an empty ledger; it behaves as 1.
	led := &fakeLedger{}
	for _, limit := range []int{0, -1} {
		dec := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", limit, testNow)
		if !dec.Allowed {
			t.Fatalf("expected allowance with empty ledger and limit %d", limit)
		}
	}

	led = &fakeLedger{events: []time.Time{testNow.Add(-time.Hour)}}
	dec := CheckQuota(context.Background(), led, &fakeRoles{}, "user-1", 0, testNow)
	if dec.Allowed {
		t.Fatalf("expected limit 0 to act as limit 1 with one recent event")
	}
	if want := 23 * time.Hour; dec.RetryAfter != want {
		t.Fatalf("expected retry after %v, got %v", want, dec.RetryAfter)
	}
}

func TestCheckQuotaEmptyUserAllowed(t *testing.T) {
	led := &fakeLedger{events: []time.Time{testNow.Add(-time.Minute)}}

	dec := CheckQuota(context.Background(), led, &fakeRoles{}, "", 1, testNow)
	if !dec.Allowed {
		t.Fatalf("expected empty user id to fail open")
	}
	if led.countCalls != 0 {
		t.Fatalf("expected no ledger read for empty user id")
	}
}
