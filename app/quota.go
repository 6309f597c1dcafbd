// Package app enforces the rolling-window analysis allowance for authenticated users.
package app

import (
	"context"
	"time"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"

	"go.uber.org/zap"
)

// QuotaWindow is the trailing span a usage event counts toward. The window
// slides with "now"; there are no calendar-day buckets.
const QuotaWindow = 24 * time.Hour

// Ledger is the append-only record of completed analyses. CountRecent returns
// the timestamps of the caller's events at or after since, newest first.
type Ledger interface {
	CountRecent(ctx context.Context, userID string, since time.Time) ([]time.Time, error)
	Append(ctx context.Context, userID string) error
}

// RoleDirectory resolves role membership. It is queried on every admission
// check so promotions and demotions take effect immediately.
type RoleDirectory interface {
	HasRole(ctx context.Context, userID string, role models.Role) (bool, error)
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed        bool
	RetryAfter     time.Duration // set on deny: time until the limiting event expires
	LastAnalysisAt time.Time     // most recent counted event, zero if none
}

// CheckQuota decides whether userID may run another analysis at instant now.
//
// Admins are exempt and never touch the ledger. If the ledger or role lookup
// is unavailable the check fails open: availability over strictness, the
// failure is logged and never surfaced to the user.
func CheckQuota(ctx context.Context, ledger Ledger, roles RoleDirectory, userID string, limit int, now time.Time) Decision {
	if userID == "" {
		zlog.Warn("quota check called with empty user id, allowing")
		return Decision{Allowed: true}
	}

	// A non-positive limit would make events[limit-1] index out of range on an
	// empty ledger. Config clamps too; this keeps the core safe on its own.
	if limit < 1 {
		limit = 1
	}

	isAdmin, err := roles.HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		// Role lookup failure only loses the bypass; the ledger still decides.
		zlog.Warn("role lookup failed during quota check",
			zap.String("user_id", userID), zap.Error(err))
		isAdmin = false
	}
	if isAdmin {
		return Decision{Allowed: true}
	}

	since := now.Add(-QuotaWindow)
	events, err := ledger.CountRecent(ctx, userID, since)
	if err != nil {
		zlog.Warn("quota ledger unavailable, failing open",
			zap.String("user_id", userID), zap.Error(err))
		return Decision{Allowed: true}
	}

	if len(events) < limit {
		dec := Decision{Allowed: true}
		if len(events) > 0 {
			dec.LastAnalysisAt = events[0]
		}
		return dec
	}

	// The slot-freeing event is the limit-th most recent, not the oldest in
	// the window: its expiry is when a new request becomes admissible.
	limiting := events[limit-1]
	retryAfter := limiting.Add(QuotaWindow).Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}

	return Decision{
		Allowed:        false,
		RetryAfter:     retryAfter,
		LastAnalysisAt: events[0],
	}
}
