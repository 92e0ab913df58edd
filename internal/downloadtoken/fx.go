package downloadtoken

import (
	"github.com/sourcekart/sourcekart/internal/downloadtoken/repository"
	"github.com/sourcekart/sourcekart/internal/downloadtoken/service"
	"go.uber.org/fx"
)

var Module = fx.Module("downloadtoken.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
