package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/sourcekart/sourcekart/internal/catalog/domain"
	"github.com/sourcekart/sourcekart/internal/events"
	"github.com/sourcekart/sourcekart/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("catalog.service"),
		repo:  p.Repo,
		genID: p.GenID,
		hub:   p.Hub,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if req.Price <= 0 {
		return nil, domain.ErrInvalidPrice
	}

	status := domain.StatusActive
	if req.Status != nil {
		status = strings.TrimSpace(*req.Status)
		if !validStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
	}

	productSlug := slug.Make(title)
	assetKey := productSlug + ".zip"
	if req.AssetKey != nil && strings.TrimSpace(*req.AssetKey) != "" {
		assetKey = strings.TrimSpace(*req.AssetKey)
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:            s.genID.Generate().Int64(),
		Title:         title,
		Slug:          productSlug,
		Description:   trimPtr(req.Description),
		Category:      trimPtr(req.Category),
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		ImageURL:      trimPtr(req.ImageURL),
		AssetKey:      assetKey,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Technologies != nil {
		p.Technologies = mustJSON(req.Technologies)
	}
	if req.Features != nil {
		p.Features = mustJSON(req.Features)
	}

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	s.publish("created", p.ID, now)

	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		Category: strings.TrimSpace(req.Category),
		Status:   strings.TrimSpace(req.Status),
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
	}
	if filter.Status != "" && !validStatus(filter.Status) {
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

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		item.Title = title
	}
	if req.Description != nil {
		item.Description = trimPtr(req.Description)
	}
	if req.Category != nil {
		item.Category = trimPtr(req.Category)
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		item.OriginalPrice = req.OriginalPrice
	}
	if req.ImageURL != nil {
		item.ImageURL = trimPtr(req.ImageURL)
	}
	if req.AssetKey != nil && strings.TrimSpace(*req.AssetKey) != "" {
		item.AssetKey = strings.TrimSpace(*req.AssetKey)
	}
	if req.Technologies != nil {
		item.Technologies = mustJSON(req.Technologies)
	}
	if req.Features != nil {
		item.Features = mustJSON(req.Features)
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !validStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		item.Status = status
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.publish("updated", item.ID, item.UpdatedAt)

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Status = domain.StatusArchived
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.publish("updated", item.ID, item.UpdatedAt)

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) publish(action string, id int64, at time.Time) {
	s.hub.Publish("products", events.ChangeEvent{
		Table:      "products",
		Action:     action,
		RowID:      fmt.Sprintf("%d", id),
		OccurredAt: at,
	})
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:            snowflake.ID(p.ID).String(),
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		Category:      p.Category,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		ImageURL:      p.ImageURL,
		AssetKey:      p.AssetKey,
		Status:        p.Status,
		Downloads:     p.Downloads,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	resp.Technologies = decodeStrings(p.Technologies)
	resp.Features = decodeStrings(p.Features)
	return resp
}

func validStatus(status string) bool {
	switch status {
	case domain.StatusActive, domain.StatusDraft, domain.StatusArchived:
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

func mustJSON(values []string) datatypes.JSON {
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}
