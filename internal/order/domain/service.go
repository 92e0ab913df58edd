package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*Response, error)
	Get(ctx context.Context, publicRef string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	MarkFailed(ctx context.Context, publicRef string) (*Response, error)
}

type CreateCheckoutRequest struct {
	ProductID     string  `json:"product_id"`
	CustomerEmail string  `json:"customer_email"`
	CustomerName  *string `json:"customer_name"`
}

type ListRequest struct {
	CustomerEmail string
	PaymentStatus string
	SortBy        string
	OrderBy       string
}

type Response struct {
	ID               string    `json:"id"`
	PublicRef        string    `json:"order_id"`
	ProductID        string    `json:"product_id"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	CustomerEmail    string    `json:"customer_email"`
	CustomerName     *string   `json:"customer_name,omitempty"`
	PaymentStatus    string    `json:"payment_status"`
	GatewayOrderID   *string   `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string   `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

var (
	ErrInvalidProduct    = errors.New("invalid_product")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrProductNotForSale = errors.New("product_not_for_sale")
	ErrNotFound          = errors.New("not_found")
	ErrNotPending        = errors.New("not_pending")
	ErrInvalidStatus     = errors.New("invalid_status")
)
