package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	catalogdomain "github.com/sourcekart/sourcekart/internal/catalog/domain"
	"github.com/sourcekart/sourcekart/internal/config"
	"github.com/sourcekart/sourcekart/internal/events"
	"github.com/sourcekart/sourcekart/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Catalog catalogdomain.Service
	Policy  *config.PolicyHolder
	Hub     *events.Hub
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	catalog catalogdomain.Service
	policy  *config.PolicyHolder
	hub     *events.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		catalog: p.Catalog,
		policy:  p.Policy,
		hub:     p.Hub,
	}
}

func (s *Service) CreateCheckout(ctx context.Context, req domain.CreateCheckoutRequest) (*domain.Response, error) {
	email := strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}

	product, err := s.catalog.Get(ctx, strings.TrimSpace(req.ProductID))
	if err != nil {
		if err == catalogdomain.ErrInvalidID || err == catalogdomain.ErrNotFound {
			return nil, domain.ErrInvalidProduct
		}
		return nil, err
	}
	if product.Status != catalogdomain.StatusActive {
		return nil, domain.ErrProductNotForSale
	}

	productID, err := snowflake.ParseString(product.ID)
	if err != nil {
		return nil, domain.ErrInvalidProduct
	}

	now := time.Now().UTC()
	o := &domain.Order{
		ID:            s.genID.Generate().Int64(),
		PublicRef:     uuid.NewString(),
		ProductID:     productID.Int64(),
		Amount:        product.Price,
		Currency:      s.policy.Get().Currency,
		CustomerEmail: email,
		CustomerName:  trimPtr(req.CustomerName),
		PaymentStatus: domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, s.db, o); err != nil {
		return nil, err
	}

	s.publish("created", o.ID, now)

	resp := s.toResponse(o)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, publicRef string) (*domain.Response, error) {
	item, err := s.findByRef(ctx, publicRef)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		PaymentStatus: strings.TrimSpace(req.PaymentStatus),
		SortBy:        strings.TrimSpace(req.SortBy),
		OrderBy:       strings.TrimSpace(req.OrderBy),
	}
	if filter.PaymentStatus != "" && !validStatus(filter.PaymentStatus) {
		return nil, domain.ErrInvalidStatus
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

func (s *Service) MarkFailed(ctx context.Context, publicRef string) (*domain.Response, error) {
	item, err := s.findByRef(ctx, publicRef)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	moved, err := s.repo.FailPayment(ctx, s.db, item.ID, now)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, domain.ErrNotPending
	}

	item.PaymentStatus = domain.PaymentStatusFailed
	item.UpdatedAt = now
	s.publish("updated", item.ID, now)

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) findByRef(ctx context.Context, publicRef string) (*domain.Order, error) {
	ref := strings.TrimSpace(publicRef)
	if ref == "" {
		return nil, domain.ErrNotFound
	}
	item, err := s.repo.FindByPublicRef(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) publish(action string, id int64, at time.Time) {
	s.hub.Publish("orders", events.ChangeEvent{
		Table:      "orders",
		Action:     action,
		RowID:      fmt.Sprintf("%d", id),
		OccurredAt: at,
	})
}

func (s *Service) toResponse(o *domain.Order) domain.Response {
	return domain.Response{
		ID:               snowflake.ID(o.ID).String(),
		PublicRef:        o.PublicRef,
		ProductID:        snowflake.ID(o.ProductID).String(),
		Amount:           o.Amount,
		Currency:         o.Currency,
		CustomerEmail:    o.CustomerEmail,
		CustomerName:     o.CustomerName,
		PaymentStatus:    o.PaymentStatus,
		GatewayOrderID:   o.GatewayOrderID,
		GatewayPaymentID: o.GatewayPaymentID,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func validStatus(status string) bool {
	switch status {
	case domain.PaymentStatusPending, domain.PaymentStatusCompleted, domain.PaymentStatusFailed:
		return true
	}
	return false
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
