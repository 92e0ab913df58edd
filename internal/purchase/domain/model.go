package domain

import "time"

type Purchase struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	UserEmail     string    `json:"user_email" gorm:"type:text;not null;uniqueIndex:ux_user_purchases_email_order,priority:1"`
	OrderID       int64     `json:"order_id" gorm:"not null;uniqueIndex:ux_user_purchases_email_order,priority:2"`
	ProductID     int64     `json:"product_id" gorm:"not null;index"`
	DownloadCount int64     `json:"download_count" gorm:"not null;default:0"`
	IsVerified    bool      `json:"is_verified" gorm:"not null;default:true"`
	PurchaseDate  time.Time `json:"purchase_date" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Purchase) TableName() string { return "user_purchases" }
