package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sourcekart/sourcekart/internal/clock"
	"github.com/sourcekart/sourcekart/internal/config"
	"go.uber.org/fx"
)

var ErrInvalidToken = errors.New("invalid_token")

type Claims struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	AdminID string `json:"admin_id"`
	jwt.RegisteredClaims
}

type Params struct {
	fx.In

	Cfg   config.Config
	Clock clock.Clock
}

// Issuer signs and verifies admin session tokens (HS256).
type Issuer struct {
	secret []byte
	clock  clock.Clock
}

func NewIssuer(p Params) (*Issuer, error) {
	secret := strings.TrimSpace(p.Cfg.AuthJWTSecret)
	if secret == "" {
		return nil, fmt.Errorf("auth jwt secret is required")
	}
	return &Issuer{secret: []byte(secret), clock: p.Clock}, nil
}

func (i *Issuer) Issue(email, role, adminID string, ttl time.Duration) (string, time.Time, error) {
	now := i.clock.Now().UTC()
	expiresAt := now.Add(ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:   email,
		Role:    role,
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.clock.Now().UTC() }))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
