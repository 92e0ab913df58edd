package payment

import (
	"github.com/sourcekart/sourcekart/internal/payment/adapters/razorpay"
	"github.com/sourcekart/sourcekart/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(razorpay.New),
	fx.Provide(service.New),
)
