package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sourcekart/sourcekart/internal/events"
	"github.com/sourcekart/sourcekart/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Hub   *events.Hub
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	hub   *events.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("purchase.service"),
		repo:  p.Repo,
		genID: p.GenID,
		hub:   p.Hub,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (*domain.Response, error) {
	email := strings.ToLower(strings.TrimSpace(req.UserEmail))
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}
	if req.OrderID == 0 || req.ProductID == 0 {
		return nil, domain.ErrInvalidOrder
	}

	now := time.Now().UTC()
	p := &domain.Purchase{
		ID:           s.genID.Generate().Int64(),
		UserEmail:    email,
		OrderID:      req.OrderID,
		ProductID:    req.ProductID,
		IsVerified:   true,
		PurchaseDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, s.db, p)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Replay of a verified payment. Surface the existing row.
		existing, err := s.repo.FindByEmailAndOrder(ctx, s.db, email, req.OrderID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, gorm.ErrRecordNotFound
		}
		resp := s.toResponse(existing)
		return &resp, nil
	}

	s.hub.Publish("user_purchases", events.ChangeEvent{
		Table:      "user_purchases",
		Action:     "created",
		RowID:      fmt.Sprintf("%d", p.ID),
		OccurredAt: now,
	})

	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) ListByEmail(ctx context.Context, userEmail string) ([]domain.Response, error) {
	email := strings.ToLower(strings.TrimSpace(userEmail))
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}

	items, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		UserEmail: strings.ToLower(strings.TrimSpace(req.UserEmail)),
		SortBy:    strings.TrimSpace(req.SortBy),
		OrderBy:   strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) toResponse(p *domain.Purchase) domain.Response {
	return domain.Response{
		ID:            snowflake.ID(p.ID).String(),
		UserEmail:     p.UserEmail,
		OrderID:       snowflake.ID(p.OrderID).String(),
		ProductID:     snowflake.ID(p.ProductID).String(),
		DownloadCount: p.DownloadCount,
		IsVerified:    p.IsVerified,
		PurchaseDate:  p.PurchaseDate,
		CreatedAt:     p.CreatedAt,
	}
}
