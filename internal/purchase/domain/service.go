package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Record registers ownership of a product for a buyer. Replays of the
	// same order never create a second row.
	Record(ctx context.Context, req RecordRequest) (*Response, error)

	ListByEmail(ctx context.Context, userEmail string) ([]Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
}

type RecordRequest struct {
	UserEmail string
	OrderID   int64
	ProductID int64
}

type ListRequest struct {
	UserEmail string
	SortBy    string
	OrderBy   string
}

type Response struct {
	ID            string    `json:"id"`
	UserEmail     string    `json:"user_email"`
	OrderID       string    `json:"order_id"`
	ProductID     string    `json:"product_id"`
	DownloadCount int64     `json:"download_count"`
	IsVerified    bool      `json:"is_verified"`
	PurchaseDate  time.Time `json:"purchase_date"`
	CreatedAt     time.Time `json:"created_at"`
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidOrder = errors.New("invalid_order")
)
