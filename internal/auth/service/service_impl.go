package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sourcekart/sourcekart/internal/auth/domain"
	"github.com/sourcekart/sourcekart/internal/auth/password"
	"github.com/sourcekart/sourcekart/internal/auth/token"
	"github.com/sourcekart/sourcekart/internal/clock"
	"github.com/sourcekart/sourcekart/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Issuer *token.Issuer
	Policy *config.PolicyHolder
	Clock  clock.Clock
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	issuer *token.Issuer
	policy *config.PolicyHolder
	clock  clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		repo:   p.Repo,
		issuer: p.Issuer,
		policy: p.Policy,
		clock:  p.Clock,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.ErrMissingCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.verify(ctx, user, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.clock.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, s.db, user.ID, now); err != nil {
		s.log.Warn("touch last login failed", zap.String("email", email), zap.Error(err))
	}

	adminID := snowflake.ID(user.ID).String()
	signed, expiresAt, err := s.issuer.Issue(user.Email, user.Role, adminID, s.policy.Get().AdminSessionTTL)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User: domain.UserInfo{
			ID:    adminID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	}, nil
}

// verify checks the stored credential. Rows that predate hashing hold the
// raw password; a successful match rewrites them as bcrypt.
func (s *Service) verify(ctx context.Context, user *domain.AdminUser, candidate string) bool {
	if password.IsHashed(user.PasswordHash) {
		return password.Verify(candidate, user.PasswordHash)
	}

	if subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(candidate)) == 1 {
		hashed, err := password.Hash(candidate)
		if err != nil {
			s.log.Warn("password upgrade failed", zap.String("email", user.Email), zap.Error(err))
			return true
		}
		if err := s.repo.UpdatePasswordHash(ctx, s.db, user.ID, hashed, s.clock.Now().UTC()); err != nil {
			s.log.Warn("password upgrade failed", zap.String("email", user.Email), zap.Error(err))
		}
		return true
	}
	return false
}
