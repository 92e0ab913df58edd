package domain

import "time"

const RoleAdmin = "admin"

type AdminUser struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"type:text;not null;uniqueIndex:ux_admin_users_email"`
	Name         *string    `json:"name,omitempty" gorm:"type:text"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;type:text;not null"`
	Role         string     `json:"role" gorm:"type:text;not null;default:admin"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (AdminUser) TableName() string { return "admin_users" }
