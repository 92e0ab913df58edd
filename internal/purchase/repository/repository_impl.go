package repository

import (
	"context"
	"time"

	"github.com/sourcekart/sourcekart/internal/purchase/domain"
	"github.com/sourcekart/sourcekart/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, purchase *domain.Purchase) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO user_purchases (id, user_email, order_id, product_id, download_count, is_verified, purchase_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_email, order_id) DO NOTHING`,
		purchase.ID,
		purchase.UserEmail,
		purchase.OrderID,
		purchase.ProductID,
		purchase.DownloadCount,
		purchase.IsVerified,
		purchase.PurchaseDate,
		purchase.CreatedAt,
		purchase.UpdatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, userEmail string) ([]domain.Purchase, error) {
	var items []domain.Purchase
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_email, order_id, product_id, download_count, is_verified, purchase_date, created_at, updated_at
		 FROM user_purchases WHERE user_email = ? ORDER BY purchase_date DESC`,
		userEmail,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByEmailAndOrder(ctx context.Context, db *gorm.DB, userEmail string, orderID int64) (*domain.Purchase, error) {
	var p domain.Purchase
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_email, order_id, product_id, download_count, is_verified, purchase_date, created_at, updated_at
		 FROM user_purchases WHERE user_email = ? AND order_id = ?`,
		userEmail,
		orderID,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByEmailAndProduct(ctx context.Context, db *gorm.DB, userEmail string, productID int64) (*domain.Purchase, error) {
	var p domain.Purchase
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_email, order_id, product_id, download_count, is_verified, purchase_date, created_at, updated_at
		 FROM user_purchases WHERE user_email = ? AND product_id = ?
		 ORDER BY purchase_date DESC LIMIT 1`,
		userEmail,
		productID,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Purchase, error) {
	var items []domain.Purchase
	stmt := db.WithContext(ctx).Model(&domain.Purchase{})

	if filter.UserEmail != "" {
		stmt = stmt.Where("user_email = ?", filter.UserEmail)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"purchase_date":  true,
		"created_at":     true,
		"download_count": true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) IncrementDownloadCount(ctx context.Context, db *gorm.DB, userEmail string, productID int64, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE user_purchases
		 SET download_count = download_count + 1, updated_at = ?
		 WHERE user_email = ? AND product_id = ?`,
		at,
		userEmail,
		productID,
	).Error
}
