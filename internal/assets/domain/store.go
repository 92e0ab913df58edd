package domain

import (
	"context"
	"errors"
	"time"
)

// Store produces time-limited signed retrieval URLs for stored objects. It is
// the only capability the download path consumes from the asset backend.
type Store interface {
	SignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

var (
	ErrInvalidObjectKey   = errors.New("invalid_object_key")
	ErrSigningUnavailable = errors.New("signing_unavailable")
)
