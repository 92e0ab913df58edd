package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusActive   = "active"
	StatusDraft    = "draft"
	StatusArchived = "archived"
)

type Product struct {
	ID            int64          `json:"id" gorm:"primaryKey"`
	Title         string         `json:"title" gorm:"type:text;not null"`
	Slug          string         `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_products_slug"`
	Description   *string        `json:"description,omitempty" gorm:"type:text"`
	Category      *string        `json:"category,omitempty" gorm:"type:text"`
	Price         int64          `json:"price" gorm:"not null"`
	OriginalPrice *int64         `json:"original_price,omitempty"`
	ImageURL      *string        `json:"image_url,omitempty" gorm:"type:text"`
	AssetKey      string         `json:"asset_key" gorm:"type:text;not null"`
	Technologies  datatypes.JSON `json:"technologies,omitempty"`
	Features      datatypes.JSON `json:"features,omitempty"`
	Status        string         `json:"status" gorm:"type:text;not null;default:active"`
	Downloads     int64          `json:"downloads" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
