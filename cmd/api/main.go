package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toko-kelontong-pos/internal/cart"
	"toko-kelontong-pos/internal/checkout"
	"toko-kelontong-pos/internal/config"
	"toko-kelontong-pos/internal/handler"
	"toko-kelontong-pos/internal/metrics"
	"toko-kelontong-pos/internal/middleware"
	"toko-kelontong-pos/internal/report"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/service"
	"toko-kelontong-pos/internal/session"
	"toko-kelontong-pos/internal/ws"
	"toko-kelontong-pos/pkg/database"
	"toko-kelontong-pos/pkg/jwt"
	"toko-kelontong-pos/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config and logger
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	// 2. Setup Database
	db, err := database.Connect(cfg.Database, !cfg.IsProduction())
	if err != nil {
		logg.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logg.Fatal("database migrate failed", zap.Error(err))
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepo(db)
	if created, err := service.EnsureSuperAdmin(ctx, userRepo, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logg.Warn("super admin seed failed", zap.Error(err))
	} else if created {
		logg.Info("super admin created", zap.String("email", cfg.Admin.Email))
	}

	// 3. Setup WebSocket Hub
	stopHub := make(chan struct{})
	wsHub := ws.NewHub(logg.Named("ws"))
	go wsHub.Run(stopHub)

	// 4. Cart storage
	var cartStore cart.Store
	switch cfg.Cart.Store {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logg.Fatal("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rdb.Close()
		cartStore = cart.NewRedisStore(rdb, cfg.Cart.TTL)
	default:
		mem := cart.NewMemoryStore(cfg.Cart.TTL)
		go sweepCarts(mem, stopHub, logg)
		cartStore = mem
	}

	// 5. Dependency Injection (Wiring Layers)
	m := metrics.New()
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	tenantRepo := repository.NewTenantRepo(db)
	productRepo := repository.NewProductRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db, productRepo)
	saleRepo := repository.NewSaleRepo(db, productRepo)

	resolver := session.NewResolver(tokens, userRepo, tenantRepo, session.Options{
		Attempts:    cfg.Session.ResolveAttempts,
		Backoff:     cfg.Session.RetryBackoff,
		IdleTimeout: cfg.Session.IdleTimeout,
	}, logg.Named("session"))

	carts := cart.NewService(cartStore, productRepo, logg.Named("cart"))
	processor := checkout.NewProcessor(carts, saleRepo, wsHub, m, cfg.Checkout.CommitTimeout, logg.Named("checkout"))

	authService := service.NewAuthService(db, userRepo, tenantRepo, tokens, resolver, wsHub, logg)
	userService := service.NewUserService(userRepo, logg)
	tenantService := service.NewTenantService(tenantRepo, logg)
	invService := service.NewInventoryService(productRepo, purchaseRepo, supplierRepo, wsHub, logg)
	supplierService := service.NewSupplierService(supplierRepo)
	dashService := service.NewDashboardService(saleRepo, purchaseRepo, productRepo)
	saleService := service.NewSaleService(saleRepo, tenantRepo)
	reports := report.NewService(saleRepo, purchaseRepo, logg.Named("report"))

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService, logg),
		Tenant:    handler.NewTenantHandler(tenantService, logg),
		Inventory: handler.NewInventoryHandler(invService, logg),
		Supplier:  handler.NewSupplierHandler(supplierService, logg),
		User:      handler.NewUserHandler(userService, logg),
		Dashboard: handler.NewDashboardHandler(dashService, logg),
		POS:       handler.NewPOSHandler(carts, processor, saleService, logg),
		Report:    handler.NewReportHandler(reports, logg),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	// Middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.CORSOrigins}))
	app.Use(m.Middleware())

	// 7. Routes
	requireAuth := middleware.RequireAuth(resolver, m)
	handler.Register(app, handlers, requireAuth)
	app.Get("/metrics", m.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// WebSocket Route
	app.Use("/ws", requireAuth, handler.WSUpgrade)
	app.Get("/ws", handler.WSFeed(wsHub))

	// 8. Graceful Shutdown
	go func() {
		logg.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("cart_store", cfg.Cart.Store))
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logg.Fatal("server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logg.Error("server forced to shutdown", zap.Error(err))
	}
	close(stopHub)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logg.Info("server exited")
}

// sweepCarts drops expired in-memory carts every few minutes.
func sweepCarts(store *cart.MemoryStore, stop <-chan struct{}, logg *zap.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				logg.Debug("expired carts removed", zap.Int("count", n))
			}
		}
	}
}
