package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	assetdomain "github.com/sourcekart/sourcekart/internal/assets/domain"
	catalogdomain "github.com/sourcekart/sourcekart/internal/catalog/domain"
	"github.com/sourcekart/sourcekart/internal/clock"
	"github.com/sourcekart/sourcekart/internal/config"
	"github.com/sourcekart/sourcekart/internal/download/domain"
	tokendomain "github.com/sourcekart/sourcekart/internal/downloadtoken/domain"
	purchasedomain "github.com/sourcekart/sourcekart/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Tokens    tokendomain.Service
	Purchases purchasedomain.Repository
	Catalog   catalogdomain.Repository
	Assets    assetdomain.Store
	Policy    *config.PolicyHolder
	Clock     clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	tokens    tokendomain.Service
	purchases purchasedomain.Repository
	catalog   catalogdomain.Repository
	assets    assetdomain.Store
	policy    *config.PolicyHolder
	clock     clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("download.service"),
		tokens:    p.Tokens,
		purchases: p.Purchases,
		catalog:   p.Catalog,
		assets:    p.Assets,
		policy:    p.Policy,
		clock:     p.Clock,
	}
}

func (s *Service) Resolve(ctx context.Context, req domain.ResolveRequest) (*domain.ResolveResponse, error) {
	tokenValue := strings.TrimSpace(req.Token)
	email := strings.ToLower(strings.TrimSpace(req.UserEmail))
	if tokenValue == "" || email == "" {
		return nil, domain.ErrMissingFields
	}

	token, err := s.tokens.Redeem(ctx, tokenValue, email)
	if err != nil {
		if err == tokendomain.ErrInvalidToken {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	// The token is spent from here on. Counter bumps are best effort; a
	// failed URL is ErrDownloadUnavailable and the recovery path applies.
	if err := s.purchases.IncrementDownloadCount(ctx, s.db, email, token.ProductID, s.clock.Now().UTC()); err != nil {
		s.log.Warn("download count bump failed",
			zap.String("user_email", email),
			zap.Int64("product_id", token.ProductID),
			zap.Error(err),
		)
	}

	product, err := s.catalog.FindByID(ctx, s.db, token.ProductID)
	if err != nil || product == nil {
		s.log.Error("product lookup failed after token burn",
			zap.Int64("product_id", token.ProductID),
			zap.Error(err),
		)
		return nil, domain.ErrDownloadUnavailable
	}

	if err := s.catalog.IncrementDownloads(ctx, s.db, product.ID); err != nil {
		s.log.Warn("product download counter bump failed",
			zap.Int64("product_id", product.ID),
			zap.Error(err),
		)
	}

	ttl := s.policy.Get().SignedURLTTL
	url, err := s.assets.SignedURL(ctx, product.AssetKey, ttl)
	if err != nil {
		s.log.Error("signed url failed after token burn",
			zap.Int64("product_id", product.ID),
			zap.String("asset_key", product.AssetKey),
			zap.Error(err),
		)
		return nil, domain.ErrDownloadUnavailable
	}

	return &domain.ResolveResponse{
		DownloadURL: url,
		ProductName: product.Title,
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

func (s *Service) Recover(ctx context.Context, email string) ([]domain.RecoveredPurchase, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, domain.ErrMissingFields
	}

	purchases, err := s.purchases.FindByEmail(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}

	recovered := make([]domain.RecoveredPurchase, 0, len(purchases))
	for _, p := range purchases {
		product, err := s.catalog.FindByID(ctx, s.db, p.ProductID)
		if err != nil || product == nil {
			s.log.Warn("recovery skipped purchase with missing product",
				zap.Int64("product_id", p.ProductID),
				zap.Error(err),
			)
			continue
		}

		token, err := s.tokens.Reissue(ctx, normalized, p.ProductID)
		if err != nil {
			s.log.Error("recovery token issue failed",
				zap.Int64("product_id", p.ProductID),
				zap.Error(err),
			)
			continue
		}

		recovered = append(recovered, domain.RecoveredPurchase{
			ProductID:     snowflake.ID(product.ID).String(),
			ProductName:   product.Title,
			DownloadToken: token.Token,
			DownloadCount: p.DownloadCount,
		})
	}
	return recovered, nil
}
