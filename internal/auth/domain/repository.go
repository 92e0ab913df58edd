package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *AdminUser) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*AdminUser, error)
	UpdatePasswordHash(ctx context.Context, db *gorm.DB, id int64, hash string, at time.Time) error
	TouchLastLogin(ctx context.Context, db *gorm.DB, id int64, at time.Time) error
}
