// Package mongodb contains the MongoDB-backed repositories for reports, users
// and the login lockout store.
package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect establishes and verifies a MongoDB connection. The returned client
// is the single shared handle; repositories receive it explicitly instead of
// reaching for module-level state.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	clientOptions := options.Client().
		ApplyURI(withRetryWrites(uri)).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout + 5*time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// withRetryWrites mirrors the connection-string normalization the service has
// always used: retryable writes are required for the unique-index create path.
func withRetryWrites(uri string) string {
	if strings.Contains(uri, "retryWrites") {
		return uri
	}
	separator := "?"
	if strings.Contains(uri, "?") {
		separator = "&"
	}
	return uri + separator + "retryWrites=true&w=majority"
}
