package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/sourcekart/sourcekart/internal/config"
	"go.uber.org/zap"
)

const (
	keyAdminLogin = "storefront:login:%s"
	keyDownload   = "storefront:download:%s"

	loginRate     = 0.2 // one attempt every five seconds, sustained
	loginBurst    = 5
	downloadRate  = 1.0
	downloadBurst = 10
)

// StorefrontLimiter throttles the credential and token endpoints. Without a
// redis address it disables itself and every check passes.
type StorefrontLimiter struct {
	bucket *TokenBucket
	log    *zap.Logger
}

func NewStorefrontLimiter(cfg config.Config, log *zap.Logger) *StorefrontLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
	return &StorefrontLimiter{
		bucket: NewTokenBucket(client),
		log:    log.Named("ratelimit"),
	}
}

func (l *StorefrontLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowLogin throttles admin login attempts per client address.
func (l *StorefrontLimiter) AllowLogin(ctx context.Context, clientKey string) bool {
	return l.allow(ctx, fmt.Sprintf(keyAdminLogin, clientKey), loginRate, loginBurst)
}

// AllowDownload throttles token redemption attempts per buyer email.
func (l *StorefrontLimiter) AllowDownload(ctx context.Context, email string) bool {
	return l.allow(ctx, fmt.Sprintf(keyDownload, strings.ToLower(strings.TrimSpace(email))), downloadRate, downloadBurst)
}

// allow fails open: a broken limiter must not take the storefront down.
func (l *StorefrontLimiter) allow(ctx context.Context, key string, rate float64, burst int) bool {
	if !l.Enabled() {
		return true
	}
	ok, err := l.bucket.Allow(ctx, key, rate, burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
		return true
	}
	return ok
}
