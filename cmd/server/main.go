package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/renterz-unitsdb/internal/config"
	"github.com/localnerve/renterz-unitsdb/internal/database"
	"github.com/localnerve/renterz-unitsdb/internal/handlers"
	"github.com/localnerve/renterz-unitsdb/internal/middleware"
	"github.com/localnerve/renterz-unitsdb/internal/services"
	"github.com/localnerve/renterz-unitsdb/internal/store"
	"github.com/localnerve/renterz-unitsdb/internal/types"
	"gorm.io/gorm"

	_ "github.com/localnerve/renterz-unitsdb/docs/api" // Swagger docs
)

// @title UnitsDB API
// @version 1.0.0
// @description Go Fiber inventory service for property and unit allocation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/renterz-unitsdb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// JSON collection store: seed source and snapshot mirror
	collections, err := store.New(cfg.DataDir, cfg.StorageLimitBytes)
	if err != nil {
		log.Fatalf("Failed to open collection store: %v", err)
	}

	// Connect to the primary database, falling back to the local demo
	// database when it is unreachable and demo mode allows it
	db, demo, err := connectWithFallback(cfg, collections)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Retired demo seeds from early revisions are pruned once, at startup
	if err := services.PruneLegacySeeds(db); err != nil {
		log.Fatalf("Failed to prune legacy seed records: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("unitsdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Inventory routes
	inventory := api.Group("/inventory")

	var snapshotStore *store.Store
	if demo {
		snapshotStore = collections
	}
	handler := &handlers.InventoryHandler{DB: db, Store: snapshotStore}

	// Read routes (any authenticated user)
	inventory.Get("/properties", middleware.AuthUser(), handler.GetProperties)
	inventory.Get("/properties/:propertyId", middleware.AuthUser(), handler.GetProperty)
	inventory.Get("/units", middleware.AuthUser(), handler.GetUnits)
	inventory.Get("/units/:unitId", middleware.AuthUser(), handler.GetUnit)
	inventory.Get("/audit", middleware.AuthUser(), handler.GetUnitAudit)
	inventory.Get("/users", middleware.AuthAdmin(), handler.GetUsers)
	inventory.Get("/users/lookup", middleware.AuthAdmin(), handler.LookupUser)

	// Admin-only mutation routes
	inventory.Post("/properties", middleware.AuthAdmin(), handler.CreateProperty)
	inventory.Put("/properties/:propertyId", middleware.AuthAdmin(), handler.UpdateProperty)
	inventory.Delete("/properties/:propertyId", middleware.AuthAdmin(), handler.DeleteProperty)
	inventory.Post("/units/:unitId/allocate", middleware.AuthAdmin(), handler.AllocateUnit)
	inventory.Put("/units/:unitId/capacity", middleware.AuthAdmin(), handler.UpdateSharingCapacity)
	inventory.Delete("/units/:unitId/tenants", middleware.AuthAdmin(), handler.RemoveTenant)
	inventory.Post("/users", middleware.AuthAdmin(), handler.CreateUser)
	inventory.Delete("/users/:userId", middleware.AuthAdmin(), handler.DeleteUser)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	if !demo {
		log.Printf("Authorizer will be initialized on first authenticated request")
	}

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// connectWithFallback connects to the configured primary database, or falls
// back to the local demo database when demo mode is enabled. The demo
// database is migrated and seeded from the collection store on first use.
func connectWithFallback(cfg *config.Config, collections *store.Store) (*gorm.DB, bool, error) {
	if !cfg.DemoMode {
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, false, err
		}
		return db, false, database.AutoMigrate(db)
	}

	if cfg.DBDatabase != "" {
		if db, err := database.Connect(cfg); err == nil {
			return db, false, database.AutoMigrate(db)
		} else {
			log.Printf("Primary database unreachable, falling back to demo store: %v", err)
		}
	}

	db, err := database.ConnectDemo(cfg)
	if err != nil {
		return nil, true, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, true, err
	}
	if err := services.SeedDemo(db, collections); err != nil {
		return nil, true, err
	}
	return db, true, nil
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Authorization failures carry their own code and type
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
