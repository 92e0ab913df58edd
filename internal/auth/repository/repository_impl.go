package repository

import (
	"context"
	"time"

	"github.com/sourcekart/sourcekart/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, user *domain.AdminUser) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO admin_users (id, email, name, password_hash, role, last_login, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.LastLogin,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, name, password_hash, role, last_login, created_at, updated_at
		 FROM admin_users WHERE email = ?`,
		email,
	).Scan(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, nil
	}
	return &u, nil
}

func (r *repo) UpdatePasswordHash(ctx context.Context, db *gorm.DB, id int64, hash string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE admin_users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash,
		at,
		id,
	).Error
}

func (r *repo) TouchLastLogin(ctx context.Context, db *gorm.DB, id int64, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE admin_users SET last_login = ?, updated_at = ? WHERE id = ?`,
		at,
		at,
		id,
	).Error
}
