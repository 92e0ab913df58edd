package domain

import "time"

type DownloadToken struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Token     string    `json:"token" gorm:"type:text;not null;uniqueIndex:ux_download_tokens_token"`
	UserEmail string    `json:"user_email" gorm:"type:text;not null;index"`
	ProductID int64     `json:"product_id" gorm:"not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DownloadToken) TableName() string { return "download_tokens" }
