package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"simple-store/internal/domain"
)

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type orderService interface {
	Place(ctx context.Context, userID int64, cart []domain.CartLine) (int64, error)
	Get(ctx context.Context, orderID int64) (*domain.Receipt, error)
}

type userService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
}

// Deps groups the services the API routes call into.
type Deps struct {
	ProductSvc  productService
	OrderSvc    orderService
	UserSvc     userService
	CORSOrigins []string
	Metrics     *Metrics
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db pinger, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil || deps.OrderSvc == nil || deps.UserSvc == nil {
		return nil, errors.New("httpserver: product, order and user services are required")
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		gin.LoggerWithWriter(logger.Writer()),
		gin.Recovery(),
		corsMiddleware(deps.CORSOrigins),
		deps.Metrics.middleware(),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	h := &handlers{
		products: deps.ProductSvc,
		orders:   deps.OrderSvc,
		users:    deps.UserSvc,
		metrics:  deps.Metrics,
		logger:   logger,
	}
	api := router.Group("/api")
	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.POST("/orders", h.placeOrder)
	api.GET("/orders/:orderId", h.getOrder)
	api.POST("/register", h.register)
	api.POST("/login", h.login)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

type handlers struct {
	products productService
	orders   orderService
	users    userService
	metrics  *Metrics
	logger   *log.Logger
}
