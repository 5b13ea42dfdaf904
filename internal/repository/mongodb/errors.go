package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adscenter/reports/internal/apperror"
)

// wrapError translates driver failures into the application error taxonomy.
// Connectivity problems become StorageUnavailable so callers can tell an
// outage apart from "not found"; anything unrecognized is wrapped as-is.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}
	if isUnavailable(err) {
		return apperror.NewStorageUnavailable(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	return mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected)
}
