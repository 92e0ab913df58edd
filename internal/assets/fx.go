package assets

import (
	"github.com/sourcekart/sourcekart/internal/assets/urlsigner"
	"go.uber.org/fx"
)

var Module = fx.Module("assets",
	fx.Provide(urlsigner.New),
)
