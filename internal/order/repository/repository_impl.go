package repository

import (
	"context"
	"time"

	"github.com/sourcekart/sourcekart/internal/order/domain"
	"github.com/sourcekart/sourcekart/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (id, public_ref, product_id, amount, currency, customer_email, customer_name, payment_status, gateway_order_id, gateway_payment_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.PublicRef,
		order.ProductID,
		order.Amount,
		order.Currency,
		order.CustomerEmail,
		order.CustomerName,
		order.PaymentStatus,
		order.GatewayOrderID,
		order.GatewayPaymentID,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, public_ref, product_id, amount, currency, customer_email, customer_name, payment_status, gateway_order_id, gateway_payment_id, created_at, updated_at
		 FROM orders WHERE id = ?`,
		id,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == 0 {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) FindByPublicRef(ctx context.Context, db *gorm.DB, publicRef string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, public_ref, product_id, amount, currency, customer_email, customer_name, payment_status, gateway_order_id, gateway_payment_id, created_at, updated_at
		 FROM orders WHERE public_ref = ?`,
		publicRef,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == 0 {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Order, error) {
	var items []domain.Order
	stmt := db.WithContext(ctx).Model(&domain.Order{})

	if filter.CustomerEmail != "" {
		stmt = stmt.Where("customer_email = ?", filter.CustomerEmail)
	}
	if filter.PaymentStatus != "" {
		stmt = stmt.Where("payment_status = ?", filter.PaymentStatus)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"amount":     true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CompletePayment(ctx context.Context, db *gorm.DB, id int64, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET payment_status = ?, gateway_order_id = ?, gateway_payment_id = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		domain.PaymentStatusCompleted,
		gatewayOrderID,
		gatewayPaymentID,
		at,
		id,
		domain.PaymentStatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FailPayment(ctx context.Context, db *gorm.DB, id int64, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET payment_status = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		domain.PaymentStatusFailed,
		at,
		id,
		domain.PaymentStatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
