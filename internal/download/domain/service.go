package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Resolve spends a download token and returns a short-lived signed URL
	// for the product asset.
	Resolve(ctx context.Context, req ResolveRequest) (*ResolveResponse, error)

	// Recover re-issues download access for every verified purchase of the
	// buyer, for the case where the original token was lost or spent.
	Recover(ctx context.Context, email string) ([]RecoveredPurchase, error)
}

type ResolveRequest struct {
	Token     string `json:"token"`
	UserEmail string `json:"user_email"`
}

type ResolveResponse struct {
	DownloadURL string `json:"download_url"`
	ProductName string `json:"product_name"`
	ExpiresIn   int64  `json:"expires_in"`
}

type RecoveredPurchase struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	DownloadToken string `json:"download_token"`
	DownloadCount int64  `json:"download_count"`
}

var (
	ErrMissingFields = errors.New("missing_fields")

	// ErrInvalidToken covers unknown, expired, spent and mismatched tokens.
	// Callers get one message for all four.
	ErrInvalidToken = errors.New("invalid_or_expired_token")

	// ErrDownloadUnavailable means the token was spent but no URL could be
	// produced. The recovery path mints a replacement.
	ErrDownloadUnavailable = errors.New("download_unavailable")
)
