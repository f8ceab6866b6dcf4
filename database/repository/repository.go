package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = errors.New("duplicate document")
	// ErrStateChanged is returned when a conditional update matched nothing because the
	// document is no longer in the expected state, or a concurrent transaction won.
	ErrStateChanged = errors.New("document not in expected state")
)

// Timeout bounds every single repository call.
const Timeout = 5 * time.Second

// NewContext derives a bounded context from the caller's. Session values survive the derivation,
// so calls made inside WithTransaction stay in the transaction.
func NewContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Timeout)
}

// MapError translates driver errors into the repository sentinels.
func MapError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// CaseInsensitiveContains builds a $regex matching value anywhere in the field.
func CaseInsensitiveContains(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}
