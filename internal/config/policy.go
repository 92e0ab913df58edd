package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Policy holds the storefront policy knobs that operators may tune without a
// redeploy: credential lifetimes and the checkout currency.
type Policy struct {
	// DownloadTokenTTL is the validity window of a freshly issued download token.
	DownloadTokenTTL time.Duration `mapstructure:"downloadTokenTTL"`
	// SignedURLTTL is the validity window of a signed asset URL.
	SignedURLTTL time.Duration `mapstructure:"signedURLTTL"`
	// AdminSessionTTL is the lifetime of an admin session token.
	AdminSessionTTL time.Duration `mapstructure:"adminSessionTTL"`
	// Currency is the minor-unit currency all checkout amounts are created in.
	Currency string `mapstructure:"currency"`
}

func DefaultPolicy() Policy {
	return Policy{
		DownloadTokenTTL: time.Hour,
		SignedURLTTL:     time.Hour,
		AdminSessionTTL:  24 * time.Hour,
		Currency:         "INR",
	}
}

// PolicyHolder exposes the current policy and hot-reloads it when the
// storefront.yml config file changes on disk.
type PolicyHolder struct {
	current atomic.Value // holds Policy
}

func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("storefront")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/sourcekart/config")
	v.AddConfigPath("/etc/sourcekart")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SOURCEKART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPolicy()
	v.SetDefault("policy.downloadTokenTTL", defaults.DownloadTokenTTL)
	v.SetDefault("policy.signedURLTTL", defaults.SignedURLTTL)
	v.SetDefault("policy.adminSessionTTL", defaults.AdminSessionTTL)
	v.SetDefault("policy.currency", defaults.Currency)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Policy
	if err := v.UnmarshalKey("policy", &cfg); err != nil {
		return nil, err
	}
	if err := validatePolicy(cfg); err != nil {
		return nil, err
	}

	holder := &PolicyHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Policy
		if err := v.UnmarshalKey("policy", &updated); err != nil {
			log.Printf("[storefront-config] reload failed: %v", err)
			return
		}
		if err := validatePolicy(updated); err != nil {
			log.Printf("[storefront-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[storefront-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PolicyHolder) Get() Policy {
	return h.current.Load().(Policy)
}

// StaticPolicyHolder returns a holder pinned to the given policy, with no
// file watching. Used by tests and one-shot tools.
func StaticPolicyHolder(p Policy) *PolicyHolder {
	h := &PolicyHolder{}
	h.current.Store(p)
	return h
}

func validatePolicy(cfg Policy) error {
	if cfg.DownloadTokenTTL <= 0 {
		return errors.New("policy.downloadTokenTTL must be positive")
	}
	if cfg.SignedURLTTL <= 0 {
		return errors.New("policy.signedURLTTL must be positive")
	}
	if cfg.AdminSessionTTL <= 0 {
		return errors.New("policy.adminSessionTTL must be positive")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("policy.currency cannot be empty")
	}
	return nil
}
