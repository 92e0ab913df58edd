package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Issue mints a fresh single-use token for the buyer and product.
	Issue(ctx context.Context, userEmail string, productID int64) (*DownloadToken, error)

	// Redeem spends the token. Exactly one call succeeds per token; every
	// failure mode maps to ErrInvalidToken so callers cannot probe which
	// check failed.
	Redeem(ctx context.Context, token, userEmail string) (*DownloadToken, error)

	// LatestLive returns the newest live token for the buyer and product,
	// or nil when none exists.
	LatestLive(ctx context.Context, userEmail string, productID int64) (*DownloadToken, error)

	// Reissue returns the latest live token, minting a new one only when
	// none is live.
	Reissue(ctx context.Context, userEmail string, productID int64) (*DownloadToken, error)
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidToken = errors.New("invalid_token")
)
