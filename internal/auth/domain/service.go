package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Login checks admin credentials and returns a signed session token.
	// Unknown email and wrong password are indistinguishable to the caller.
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	User      UserInfo  `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserInfo struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
	Role  string  `json:"role"`
}

var (
	ErrMissingCredentials = errors.New("missing_credentials")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)
