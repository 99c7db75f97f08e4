package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/imrishuroy/easyorder/internal/config"
	"github.com/imrishuroy/easyorder/internal/idempotency"
	"github.com/imrishuroy/easyorder/internal/middleware"
	"github.com/imrishuroy/easyorder/internal/orders"
	"github.com/imrishuroy/easyorder/internal/store"
)

// HandlerConfig groups the dependencies shared by every route.
type HandlerConfig struct {
	DB         *store.DB
	Paging     store.Paging
	Dispatcher orders.Dispatcher
	// Idempotency enables the Idempotency-Key header on order creation; nil disables it.
	Idempotency *idempotency.Store
	Logger      zerolog.Logger

	RateLimit   config.RateLimitConfig
	ServiceName string
}

// NewRouter builds the gin engine with middleware and every route registered.
func NewRouter(cfg HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(cfg.Logger),
		middleware.Recovery(cfg.Logger),
		middleware.AccessLog(cfg.Logger),
	)
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middleware.RateLimit(cfg.RateLimit))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to EasyOrder!"})
	})
	r.GET("/health", func(c *gin.Context) {
		if err := cfg.DB.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "driver": cfg.DB.Driver()})
	})

	RegisterCustomersRoutes(r, cfg)
	RegisterOrdersRoutes(r, cfg)
	RegisterProductsRoutes(r, cfg)
	RegisterPaymentsRoutes(r, cfg)
	RegisterDeliveriesRoutes(r, cfg)
	RegisterReportsRoutes(r, cfg)
	return r
}
