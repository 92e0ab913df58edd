package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sourcekart/sourcekart/internal/clock"
	"github.com/sourcekart/sourcekart/internal/config"
	"github.com/sourcekart/sourcekart/internal/downloadtoken/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tokenBytes = 32

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Policy *config.PolicyHolder
	Clock  clock.Clock
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	genID  *snowflake.Node
	policy *config.PolicyHolder
	clock  clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("downloadtoken.service"),
		repo:   p.Repo,
		genID:  p.GenID,
		policy: p.Policy,
		clock:  p.Clock,
	}
}

func (s *Service) Issue(ctx context.Context, userEmail string, productID int64) (*domain.DownloadToken, error) {
	email := strings.ToLower(strings.TrimSpace(userEmail))
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}

	value, err := newTokenValue()
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}

	now := s.clock.Now().UTC()
	t := &domain.DownloadToken{
		ID:        s.genID.Generate().Int64(),
		Token:     value,
		UserEmail: email,
		ProductID: productID,
		ExpiresAt: now.Add(s.policy.Get().DownloadTokenTTL),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Redeem(ctx context.Context, token, userEmail string) (*domain.DownloadToken, error) {
	value := strings.TrimSpace(token)
	email := strings.ToLower(strings.TrimSpace(userEmail))
	if value == "" || email == "" {
		return nil, domain.ErrInvalidToken
	}

	now := s.clock.Now().UTC()
	spent, err := s.repo.Redeem(ctx, s.db, value, email, now)
	if err != nil {
		return nil, err
	}
	if !spent {
		// Unknown, expired, already used or wrong email. One error for
		// all of them.
		return nil, domain.ErrInvalidToken
	}

	t, err := s.repo.FindByToken(ctx, s.db, value)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrInvalidToken
	}
	return t, nil
}

func (s *Service) LatestLive(ctx context.Context, userEmail string, productID int64) (*domain.DownloadToken, error) {
	email := strings.ToLower(strings.TrimSpace(userEmail))
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}
	return s.repo.FindLatestLive(ctx, s.db, email, productID, s.clock.Now().UTC())
}

func (s *Service) Reissue(ctx context.Context, userEmail string, productID int64) (*domain.DownloadToken, error) {
	live, err := s.LatestLive(ctx, userEmail, productID)
	if err != nil {
		return nil, err
	}
	if live != nil {
		return live, nil
	}
	return s.Issue(ctx, userEmail, productID)
}

func newTokenValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
