package purchase

import (
	"github.com/sourcekart/sourcekart/internal/purchase/repository"
	"github.com/sourcekart/sourcekart/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
