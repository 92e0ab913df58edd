package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
}

type ListRequest struct {
	Category string
	Status   string
	SortBy   string
	OrderBy  string
}

type CreateRequest struct {
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Price         int64    `json:"price"`
	OriginalPrice *int64   `json:"original_price"`
	ImageURL      *string  `json:"image_url"`
	AssetKey      *string  `json:"asset_key"`
	Technologies  []string `json:"technologies"`
	Features      []string `json:"features"`
	Status        *string  `json:"status"`
}

type UpdateRequest struct {
	ID            string   `json:"-"`
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Price         *int64   `json:"price"`
	OriginalPrice *int64   `json:"original_price"`
	ImageURL      *string  `json:"image_url"`
	AssetKey      *string  `json:"asset_key"`
	Technologies  []string `json:"technologies"`
	Features      []string `json:"features"`
	Status        *string  `json:"status"`
}

type Response struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   *string   `json:"description,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Price         int64     `json:"price"`
	OriginalPrice *int64    `json:"original_price,omitempty"`
	ImageURL      *string   `json:"image_url,omitempty"`
	AssetKey      string    `json:"asset_key,omitempty"`
	Technologies  []string  `json:"technologies,omitempty"`
	Features      []string  `json:"features,omitempty"`
	Status        string    `json:"status"`
	Downloads     int64     `json:"downloads"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var (
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidPrice  = errors.New("invalid_price")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrSlugTaken     = errors.New("slug_taken")
)
