package domain

import (
	"context"
	"errors"
)

// SignatureVerifier checks a gateway callback signature against the ids it
// covers. Implementations must compare in constant time.
type SignatureVerifier interface {
	Verify(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) error
}

type Service interface {
	// Complete verifies the gateway signature and settles the order:
	// exactly one pending→completed transition, one ownership record and a
	// fresh download token, no matter how often the callback is replayed.
	Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error)
}

type CompleteRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
	OrderRef         string `json:"order_id"`
}

type CompleteResponse struct {
	Message       string `json:"message"`
	DownloadToken string `json:"download_token,omitempty"`
}

var (
	ErrMissingFields    = errors.New("missing_fields")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrOrderNotFound    = errors.New("order_not_found")
	ErrUpdateFailed     = errors.New("update_failed")
)
