package auth

import (
	"context"
	"time"
)

// LockoutPolicy defines when repeated login failures lock an account.
type LockoutPolicy struct {
	// MaxAttempts is the number of failures within Window that triggers a lock.
	MaxAttempts int
	// Window is how long failures keep counting toward a lock.
	Window time.Duration
	// LockDuration is how long the account stays locked.
	LockDuration time.Duration
}

// DefaultLockoutPolicy matches the historical behavior: 5 failures inside
// 15 minutes locks the account for 30 minutes.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts:  5,
		Window:       15 * time.Minute,
		LockDuration: 30 * time.Minute,
	}
}

// LockoutStatus is the result of a lockout check.
type LockoutStatus struct {
	Locked     bool
	RetryAfter time.Duration
}

// LockoutStore tracks failed login attempts per username. Implementations are
// swappable; the MongoDB store keeps state across restarts via a TTL index,
// the in-memory store backs tests and the no-database mode.
type LockoutStore interface {
	Check(ctx context.Context, username string) (LockoutStatus, error)
	RecordFailure(ctx context.Context, username string) error
	Clear(ctx context.Context, username string) error
}
