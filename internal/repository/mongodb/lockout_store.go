package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/service/auth"
)

const loginAttemptsCollection = "login_attempts"

type attemptDoc struct {
	Username    string    `bson:"username"`
	Count       int       `bson:"count"`
	LastAttempt time.Time `bson:"lastAttempt"`
	LockedUntil time.Time `bson:"lockedUntil,omitempty"`
	ExpiresAt   time.Time `bson:"expiresAt"`
}

// LockoutStore persists login attempt counters in MongoDB so lockout state
// survives process restarts and is shared across instances. A TTL index on
// expiresAt evicts stale entries.
type LockoutStore struct {
	collection *mongo.Collection
	policy     auth.LockoutPolicy
	logger     *zap.Logger
}

// NewLockoutStore builds the store and ensures its indexes.
func NewLockoutStore(ctx context.Context, client *mongo.Client, dbName string, policy auth.LockoutPolicy, logger *zap.Logger) (*LockoutStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := client.Database(dbName).Collection(loginAttemptsCollection)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create login attempt indexes: %w", err)
	}

	return &LockoutStore{collection: collection, policy: policy, logger: logger}, nil
}

// Check reports whether the username is currently locked out.
func (s *LockoutStore) Check(ctx context.Context, username string) (auth.LockoutStatus, error) {
	var doc attemptDoc
	err := s.collection.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.LockoutStatus{}, nil
		}
		return auth.LockoutStatus{}, wrapError("find login attempts", err)
	}

	now := time.Now().UTC()
	if !doc.LockedUntil.IsZero() && doc.LockedUntil.After(now) {
		return auth.LockoutStatus{Locked: true, RetryAfter: doc.LockedUntil.Sub(now)}, nil
	}
	if !doc.LockedUntil.IsZero() {
		// Lock expired; drop the counter so the next failure starts fresh.
		if err := s.Clear(ctx, username); err != nil {
			s.logger.Warn("failed clearing expired lockout", zap.String("username", username), zap.Error(err))
		}
	}
	return auth.LockoutStatus{}, nil
}

// RecordFailure increments the failure counter, resetting it when the last
// attempt fell outside the policy window, and locks the account once the
// threshold is reached.
func (s *LockoutStore) RecordFailure(ctx context.Context, username string) error {
	now := time.Now().UTC()

	var doc attemptDoc
	err := s.collection.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		doc = attemptDoc{Username: username}
	case err != nil:
		return wrapError("find login attempts", err)
	}

	if now.Sub(doc.LastAttempt) > s.policy.Window {
		doc.Count = 1
	} else {
		doc.Count++
	}
	doc.LastAttempt = now
	doc.ExpiresAt = now.Add(s.policy.Window)

	if doc.Count >= s.policy.MaxAttempts {
		doc.LockedUntil = now.Add(s.policy.LockDuration)
		doc.ExpiresAt = doc.LockedUntil.Add(time.Minute)
		s.logger.Warn("account locked after repeated failures",
			zap.String("username", username),
			zap.Int("failures", doc.Count))
	}

	_, err = s.collection.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true))
	return wrapError("record login failure", err)
}

// Clear removes the counter, typically after a successful login.
func (s *LockoutStore) Clear(ctx context.Context, username string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"username": username})
	return wrapError("clear login attempts", err)
}
