package urlsigner

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sourcekart/sourcekart/internal/assets/domain"
	"github.com/sourcekart/sourcekart/internal/clock"
	"github.com/sourcekart/sourcekart/internal/config"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Cfg   config.Config
	Clock clock.Clock
}

// Signer issues signed retrieval URLs for objects in the asset bucket. The
// URL carries an HS256 token binding the object path and an absolute expiry,
// so the serving tier can authorize the fetch without session state.
type Signer struct {
	baseURL string
	bucket  string
	secret  []byte
	clock   clock.Clock
}

type urlClaims struct {
	URL string `json:"url"`
	jwt.RegisteredClaims
}

func New(p Params) (domain.Store, error) {
	secret := strings.TrimSpace(p.Cfg.AssetSigningSecret)
	if secret == "" {
		return nil, fmt.Errorf("asset signing secret is required")
	}
	return &Signer{
		baseURL: strings.TrimRight(p.Cfg.AssetBaseURL, "/"),
		bucket:  p.Cfg.AssetBucket,
		secret:  []byte(secret),
		clock:   p.Clock,
	}, nil
}

func (s *Signer) SignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	_ = ctx

	objectKey = strings.Trim(strings.TrimSpace(objectKey), "/")
	if objectKey == "" || strings.Contains(objectKey, "..") {
		return "", domain.ErrInvalidObjectKey
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	objectPath := s.bucket + "/" + objectKey
	now := s.clock.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, urlClaims{
		URL: objectPath,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrSigningUnavailable
	}

	return fmt.Sprintf("%s/storage/v1/object/sign/%s?token=%s",
		s.baseURL,
		escapePath(objectPath),
		url.QueryEscape(signed),
	), nil
}

// VerifyToken validates a signed-URL token and returns the object path it
// authorizes. The serving tier calls this before streaming the object.
func (s *Signer) VerifyToken(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &urlClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.clock.Now() }))
	if err != nil || !parsed.Valid {
		return "", domain.ErrSigningUnavailable
	}
	claims, ok := parsed.Claims.(*urlClaims)
	if !ok || claims.URL == "" {
		return "", domain.ErrSigningUnavailable
	}
	return claims.URL, nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
