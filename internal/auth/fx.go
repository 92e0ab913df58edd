package auth

import (
	"github.com/sourcekart/sourcekart/internal/auth/repository"
	"github.com/sourcekart/sourcekart/internal/auth/service"
	"github.com/sourcekart/sourcekart/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(token.NewIssuer),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
