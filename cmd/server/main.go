package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/famechasepro/genewell-new/internal/config"
	"github.com/famechasepro/genewell-new/internal/database"
	"github.com/famechasepro/genewell-new/internal/repository"
	"github.com/famechasepro/genewell-new/internal/routes"
	"github.com/famechasepro/genewell-new/internal/services"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	// 3. Setup Fiber
	app := fiber.New(fiber.Config{
		BodyLimit: 1 << 20,
	})

	// Middleware
	app.Use(cors.New())
	if cfg.AppEnv != "production" {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, database.DB)

	// 4. Background report cleanup
	if cfg.StorageEnabled() {
		storage := services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
		cleanup := services.NewCleanupService(repository.NewReportRepository(database.DB), storage, cfg.ReportRetentionDays)
		go cleanup.Run(context.Background())
	}

	// 5. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
