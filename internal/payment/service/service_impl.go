package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcekart/sourcekart/internal/clock"
	tokendomain "github.com/sourcekart/sourcekart/internal/downloadtoken/domain"
	"github.com/sourcekart/sourcekart/internal/events"
	orderdomain "github.com/sourcekart/sourcekart/internal/order/domain"
	"github.com/sourcekart/sourcekart/internal/payment/domain"
	purchasedomain "github.com/sourcekart/sourcekart/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Verifier  domain.SignatureVerifier
	Orders    orderdomain.Repository
	Purchases purchasedomain.Service
	Tokens    tokendomain.Service
	Clock     clock.Clock
	Hub       *events.Hub
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	verifier  domain.SignatureVerifier
	orders    orderdomain.Repository
	purchases purchasedomain.Service
	tokens    tokendomain.Service
	clock     clock.Clock
	hub       *events.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		verifier:  p.Verifier,
		orders:    p.Orders,
		purchases: p.Purchases,
		tokens:    p.Tokens,
		clock:     p.Clock,
		hub:       p.Hub,
	}
}

func (s *Service) Complete(ctx context.Context, req domain.CompleteRequest) (*domain.CompleteResponse, error) {
	gatewayOrderID := strings.TrimSpace(req.GatewayOrderID)
	gatewayPaymentID := strings.TrimSpace(req.GatewayPaymentID)
	signature := strings.TrimSpace(req.Signature)
	orderRef := strings.TrimSpace(req.OrderRef)

	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" || orderRef == "" {
		return nil, domain.ErrMissingFields
	}

	// Signature first. An unverified caller learns nothing about the order.
	if err := s.verifier.Verify(ctx, gatewayOrderID, gatewayPaymentID, signature); err != nil {
		s.log.Warn("payment signature rejected",
			zap.String("gateway_order_id", gatewayOrderID),
			zap.String("order_ref", orderRef),
		)
		return nil, domain.ErrInvalidSignature
	}

	order, err := s.orders.FindByPublicRef(ctx, s.db, orderRef)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	if order.PaymentStatus == orderdomain.PaymentStatusCompleted {
		return s.replay(ctx, order)
	}

	now := s.clock.Now().UTC()
	moved, err := s.orders.CompletePayment(ctx, s.db, order.ID, gatewayOrderID, gatewayPaymentID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	if !moved {
		// Lost the race or the order already left pending. Re-read and
		// treat a completed order as a replay.
		current, err := s.orders.FindByID(ctx, s.db, order.ID)
		if err != nil {
			return nil, err
		}
		if current == nil || current.PaymentStatus != orderdomain.PaymentStatusCompleted {
			return nil, domain.ErrUpdateFailed
		}
		return s.replay(ctx, current)
	}

	s.hub.Publish("orders", events.ChangeEvent{
		Table:      "orders",
		Action:     "updated",
		RowID:      fmt.Sprintf("%d", order.ID),
		OccurredAt: now,
	})

	// The payment is settled. Everything below is best effort: failures
	// are logged and the buyer recovers through the recovery endpoint.
	if _, err := s.purchases.Record(ctx, purchasedomain.RecordRequest{
		UserEmail: order.CustomerEmail,
		OrderID:   order.ID,
		ProductID: order.ProductID,
	}); err != nil {
		s.log.Error("purchase record failed after payment",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
	}

	resp := &domain.CompleteResponse{Message: "Payment verified successfully"}
	token, err := s.tokens.Issue(ctx, order.CustomerEmail, order.ProductID)
	if err != nil {
		s.log.Error("download token issue failed after payment",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
		return resp, nil
	}
	resp.DownloadToken = token.Token
	return resp, nil
}

// replay answers a duplicate callback for an already settled order. No new
// side effects; the latest live token is surfaced when one exists.
func (s *Service) replay(ctx context.Context, order *orderdomain.Order) (*domain.CompleteResponse, error) {
	resp := &domain.CompleteResponse{Message: "Payment already verified"}

	token, err := s.tokens.LatestLive(ctx, order.CustomerEmail, order.ProductID)
	if err != nil {
		s.log.Warn("token lookup failed on replay", zap.Int64("order_id", order.ID), zap.Error(err))
		return resp, nil
	}
	if token != nil {
		resp.DownloadToken = token.Token
	}
	return resp, nil
}
