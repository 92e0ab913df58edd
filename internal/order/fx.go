package order

import (
	"github.com/sourcekart/sourcekart/internal/order/repository"
	"github.com/sourcekart/sourcekart/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
