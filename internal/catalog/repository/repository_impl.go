package repository

import (
	"context"
	"time"

	"github.com/sourcekart/sourcekart/internal/catalog/domain"
	"github.com/sourcekart/sourcekart/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, title, slug, description, category, price, original_price, image_url, asset_key, technologies, features, status, downloads, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Title,
		product.Slug,
		product.Description,
		product.Category,
		product.Price,
		product.OriginalPrice,
		product.ImageURL,
		product.AssetKey,
		product.Technologies,
		product.Features,
		product.Status,
		product.Downloads,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, title, slug, description, category, price, original_price, image_url, asset_key, technologies, features, status, downloads, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, title, slug, description, category, price, original_price, image_url, asset_key, technologies, features, status, downloads, created_at, updated_at
		 FROM products WHERE slug = ?`,
		slug,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).Model(&domain.Product{})

	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"price":      true,
		"downloads":  true,
		"title":      true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET title = ?, description = ?, category = ?, price = ?, original_price = ?, image_url = ?, asset_key = ?, technologies = ?, features = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		product.Title,
		product.Description,
		product.Category,
		product.Price,
		product.OriginalPrice,
		product.ImageURL,
		product.AssetKey,
		product.Technologies,
		product.Features,
		product.Status,
		product.UpdatedAt,
		product.ID,
	).Error
}

func (r *repo) IncrementDownloads(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET downloads = downloads + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(),
		id,
	).Error
}
