package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcekart/sourcekart/internal/assets"
	"github.com/sourcekart/sourcekart/internal/auth"
	authdomain "github.com/sourcekart/sourcekart/internal/auth/domain"
	authtoken "github.com/sourcekart/sourcekart/internal/auth/token"
	"github.com/sourcekart/sourcekart/internal/catalog"
	catalogdomain "github.com/sourcekart/sourcekart/internal/catalog/domain"
	"github.com/sourcekart/sourcekart/internal/clock"
	"github.com/sourcekart/sourcekart/internal/config"
	"github.com/sourcekart/sourcekart/internal/download"
	downloaddomain "github.com/sourcekart/sourcekart/internal/download/domain"
	"github.com/sourcekart/sourcekart/internal/downloadtoken"
	"github.com/sourcekart/sourcekart/internal/events"
	"github.com/sourcekart/sourcekart/internal/observability"
	obslogger "github.com/sourcekart/sourcekart/internal/observability/logger"
	obsmetrics "github.com/sourcekart/sourcekart/internal/observability/metrics"
	obstracing "github.com/sourcekart/sourcekart/internal/observability/tracing"
	"github.com/sourcekart/sourcekart/internal/order"
	orderdomain "github.com/sourcekart/sourcekart/internal/order/domain"
	"github.com/sourcekart/sourcekart/internal/payment"
	paymentdomain "github.com/sourcekart/sourcekart/internal/payment/domain"
	"github.com/sourcekart/sourcekart/internal/purchase"
	purchasedomain "github.com/sourcekart/sourcekart/internal/purchase/domain"
	"github.com/sourcekart/sourcekart/internal/ratelimit"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	events.Module,
	assets.Module,
	auth.Module,
	catalog.Module,
	order.Module,
	purchase.Module,
	downloadtoken.Module,
	payment.Module,
	download.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	authSvc     authdomain.Service
	issuer      *authtoken.Issuer
	catalogSvc  catalogdomain.Service
	orderSvc    orderdomain.Service
	purchaseSvc purchasedomain.Service
	paymentSvc  paymentdomain.Service
	downloadSvc downloaddomain.Service
	hub         *events.Hub
	limiter     *ratelimit.StorefrontLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	AuthSvc     authdomain.Service
	Issuer      *authtoken.Issuer
	CatalogSvc  catalogdomain.Service
	OrderSvc    orderdomain.Service
	PurchaseSvc purchasedomain.Service
	PaymentSvc  paymentdomain.Service
	DownloadSvc downloaddomain.Service
	Hub         *events.Hub
	Limiter     *ratelimit.StorefrontLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		authSvc:     p.AuthSvc,
		issuer:      p.Issuer,
		catalogSvc:  p.CatalogSvc,
		orderSvc:    p.OrderSvc,
		purchaseSvc: p.PurchaseSvc,
		paymentSvc:  p.PaymentSvc,
		downloadSvc: p.DownloadSvc,
		hub:         p.Hub,
		limiter:     p.Limiter,
	}

	svc.registerFunctionRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerFunctionRoutes exposes the storefront client contract. The paths
// mirror the hosted functions the web client already calls.
func (s *Server) registerFunctionRoutes() {
	functions := s.engine.Group("/functions/v1")

	functions.POST("/admin-auth", s.AdminAuth)
	functions.POST("/verify-payment", s.VerifyPayment)
	functions.POST("/secure-download", s.SecureDownload)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProduct)

	api.POST("/checkout", s.CreateCheckout)
	api.GET("/orders/:ref", s.GetOrder)
	api.POST("/orders/:ref/fail", s.FailOrder)

	api.POST("/downloads/recover", s.RecoverDownloads)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/v1/admin")
	admin.Use(auth.RequireAdmin(s.issuer))

	admin.GET("/products", s.AdminListProducts)
	admin.POST("/products", s.AdminCreateProduct)
	admin.GET("/products/:id", s.AdminGetProduct)
	admin.PATCH("/products/:id", s.AdminUpdateProduct)
	admin.DELETE("/products/:id", s.AdminArchiveProduct)

	admin.GET("/orders", s.AdminListOrders)
	admin.GET("/purchases", s.AdminListPurchases)

	admin.GET("/events/:table", s.StreamTableEvents)
}
