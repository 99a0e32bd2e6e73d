// Package app assembles the repositories, services and handlers into the
// HTTP application.
package app

import (
	"context"
	"time"

	"scango/internal/config"
	"scango/internal/events"
	"scango/internal/handlers"
	"scango/internal/middleware"
	"scango/internal/models"
	"scango/internal/realtime"
	"scango/internal/repositories"
	"scango/internal/scancode"
	"scango/internal/services"
	"scango/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the external resources the application runs on. Broker,
// Sessions and Events fall back to in-process implementations when nil.
type Dependencies struct {
	DB       *gorm.DB
	Broker   realtime.Broker
	Sessions session.Store
	Events   events.Publisher
	Codes    *scancode.Generator
	Logger   *zap.Logger

	// DisableRequestLog turns off the access log, for tests.
	DisableRequestLog bool
}

// App is the assembled service.
type App struct {
	Fiber    *fiber.App
	Products *services.ProductService
	Auth     *services.AuthService
	Carts    *services.CartService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Watch    *services.WatchService

	productRepo repositories.ProductRepository
}

// Migrate creates or updates the collections' tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{}, &models.User{}, &models.Cart{}, &models.Order{})
}

// New wires every component against deps and registers the routes.
func New(cfg *config.Config, deps Dependencies) (*App, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := Migrate(deps.DB); err != nil {
		return nil, err
	}

	broker := deps.Broker
	if broker == nil {
		broker = realtime.NewMemoryBroker()
	}
	store := deps.Sessions
	if store == nil {
		store = session.NewMemoryStore()
	}
	codes := deps.Codes
	if codes == nil {
		codes = scancode.NewGenerator()
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(deps.DB)
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	cartRepo := repositories.NewGORMCartRepository(deps.DB)
	orderRepo := repositories.NewGORMOrderRepository(deps.DB)

	// --- Services ---
	sessions := session.NewManager(store, cfg.SessionTTL)
	admin := services.AdminCredentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword}
	authService := services.NewAuthService(userRepo, sessions, cfg.JWTSecret, admin, log.Named("auth"))
	productService := services.NewProductService(productRepo, codes, log.Named("products"))
	orderService := services.NewOrderService(orderRepo, deps.Events, broker, log.Named("orders"))
	cartService := services.NewCartService(cartRepo, productRepo, orderService, sessions, broker, log.Named("carts"))
	checkoutService := services.NewCheckoutService(cartRepo, productRepo, orderService, broker,
		services.CheckoutOptions{DecrementStock: cfg.StockDecrementOnCheckout}, log.Named("checkout"))
	watchService := services.NewWatchService(cartRepo, broker, log.Named("watch"))

	// --- Handlers ---
	guards := handlers.Guards{
		Authenticated: middleware.AuthRequired(authService.Authenticate, log.Named("auth")),
		Customer:      middleware.CustomerOnly(),
		Admin:         middleware.AdminOnly(),
	}
	httpLog := log.Named("http")

	app := fiber.New(fiber.Config{AppName: "scango", DisableStartupMessage: true})
	if !deps.DisableRequestLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if err := ping(c.UserContext(), deps.DB); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		status["database"] = "connected"
		return c.JSON(status)
	})

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, httpLog).RegisterRoutes(apiV1, guards)
	handlers.NewProductHandler(productService, httpLog).RegisterRoutes(apiV1, guards)
	handlers.NewCartHandler(cartService, watchService, httpLog).RegisterRoutes(apiV1, guards)
	handlers.NewCheckoutHandler(checkoutService, watchService, httpLog).RegisterRoutes(apiV1, guards)
	handlers.NewOrderHandler(orderService, httpLog).RegisterRoutes(apiV1, guards)

	return &App{
		Fiber:       app,
		Products:    productService,
		Auth:        authService,
		Carts:       cartService,
		Checkout:    checkoutService,
		Orders:      orderService,
		Watch:       watchService,
		productRepo: productRepo,
	}, nil
}

// ProductRepository exposes the catalog store, for seeding.
func (a *App) ProductRepository() repositories.ProductRepository {
	return a.productRepo
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
