package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, token *DownloadToken) error

	// Redeem marks the token used in one conditional UPDATE keyed on the
	// token value, the buyer email, the unused flag and the expiry. At most
	// one caller observes true for a given token.
	Redeem(ctx context.Context, db *gorm.DB, token, userEmail string, now time.Time) (bool, error)

	FindByToken(ctx context.Context, db *gorm.DB, token string) (*DownloadToken, error)

	// FindLatestLive returns the newest unused, unexpired token for the
	// buyer and product, or nil.
	FindLatestLive(ctx context.Context, db *gorm.DB, userEmail string, productID int64, now time.Time) (*DownloadToken, error)
}
