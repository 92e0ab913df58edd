package catalog

import (
	"github.com/sourcekart/sourcekart/internal/catalog/repository"
	"github.com/sourcekart/sourcekart/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
