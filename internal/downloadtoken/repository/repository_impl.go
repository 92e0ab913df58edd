package repository

import (
	"context"
	"time"

	"github.com/sourcekart/sourcekart/internal/downloadtoken/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, token *domain.DownloadToken) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO download_tokens (id, token, user_email, product_id, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		token.ID,
		token.Token,
		token.UserEmail,
		token.ProductID,
		token.ExpiresAt,
		token.Used,
		token.CreatedAt,
	).Error
}

func (r *repo) Redeem(ctx context.Context, db *gorm.DB, token, userEmail string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE download_tokens
		 SET used = ?
		 WHERE token = ? AND user_email = ? AND used = ? AND expires_at > ?`,
		true,
		token,
		userEmail,
		false,
		now,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByToken(ctx context.Context, db *gorm.DB, token string) (*domain.DownloadToken, error) {
	var t domain.DownloadToken
	err := db.WithContext(ctx).Raw(
		`SELECT id, token, user_email, product_id, expires_at, used, created_at
		 FROM download_tokens WHERE token = ?`,
		token,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindLatestLive(ctx context.Context, db *gorm.DB, userEmail string, productID int64, now time.Time) (*domain.DownloadToken, error) {
	var t domain.DownloadToken
	err := db.WithContext(ctx).Raw(
		`SELECT id, token, user_email, product_id, expires_at, used, created_at
		 FROM download_tokens
		 WHERE user_email = ? AND product_id = ? AND used = ? AND expires_at > ?
		 ORDER BY created_at DESC LIMIT 1`,
		userEmail,
		productID,
		false,
		now,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}
