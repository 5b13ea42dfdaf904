package memory

import (
	"context"
	"sync"
	"time"

	"github.com/adscenter/reports/internal/service/auth"
)

type attemptState struct {
	count       int
	lastAttempt time.Time
	lockedUntil time.Time
}

// LockoutStore tracks login failures in a process-local map. State is lost on
// restart; the MongoDB store is the durable variant.
type LockoutStore struct {
	mu       sync.Mutex
	policy   auth.LockoutPolicy
	attempts map[string]attemptState
}

// NewLockoutStore builds an in-memory lockout store with the given policy.
func NewLockoutStore(policy auth.LockoutPolicy) *LockoutStore {
	return &LockoutStore{
		policy:   policy,
		attempts: make(map[string]attemptState),
	}
}

// Check reports whether the username is currently locked out.
func (s *LockoutStore) Check(_ context.Context, username string) (auth.LockoutStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.attempts[username]
	if !ok {
		return auth.LockoutStatus{}, nil
	}

	now := time.Now()
	if state.lockedUntil.After(now) {
		return auth.LockoutStatus{Locked: true, RetryAfter: state.lockedUntil.Sub(now)}, nil
	}
	if !state.lockedUntil.IsZero() {
		delete(s.attempts, username)
	}
	return auth.LockoutStatus{}, nil
}

// RecordFailure counts a failed attempt, locking once the threshold is hit.
func (s *LockoutStore) RecordFailure(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	state := s.attempts[username]

	if now.Sub(state.lastAttempt) > s.policy.Window {
		state.count = 1
	} else {
		state.count++
	}
	state.lastAttempt = now

	if state.count >= s.policy.MaxAttempts {
		state.lockedUntil = now.Add(s.policy.LockDuration)
	}

	s.attempts[username] = state
	return nil
}

// Clear drops the counter for a username.
func (s *LockoutStore) Clear(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, username)
	return nil
}
