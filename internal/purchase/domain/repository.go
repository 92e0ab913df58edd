package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent creates the purchase row unless one already exists for
	// (user_email, order_id). Returns true when a row was inserted.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, purchase *Purchase) (bool, error)

	FindByEmail(ctx context.Context, db *gorm.DB, userEmail string) ([]Purchase, error)
	FindByEmailAndOrder(ctx context.Context, db *gorm.DB, userEmail string, orderID int64) (*Purchase, error)
	FindByEmailAndProduct(ctx context.Context, db *gorm.DB, userEmail string, productID int64) (*Purchase, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Purchase, error)
	IncrementDownloadCount(ctx context.Context, db *gorm.DB, userEmail string, productID int64, at time.Time) error
}
