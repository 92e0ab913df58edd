package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	FindByPublicRef(ctx context.Context, db *gorm.DB, publicRef string) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Order, error)

	// CompletePayment moves a pending order to completed and records the
	// gateway ids in one conditional UPDATE. Returns false when the order
	// was not pending, so replays and races resolve to a no-op.
	CompletePayment(ctx context.Context, db *gorm.DB, id int64, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error)

	// FailPayment moves a pending order to failed. Same conditional shape
	// as CompletePayment.
	FailPayment(ctx context.Context, db *gorm.DB, id int64, at time.Time) (bool, error)
}
