package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"family-connections/internal/config"
	"family-connections/internal/handler"
	"family-connections/internal/middleware"
	"family-connections/internal/pkg/i18n"
	"family-connections/internal/pkg/logger"
	"family-connections/internal/repository"
	"family-connections/internal/service"
	"family-connections/internal/service/export"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	appLog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync()

	ctx := context.Background()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		appLog.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := config.NewRedisClient(ctx, cfg)
	if err != nil {
		appLog.Warn("redis unavailable, tree view cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var store export.ObjectStore
	minioClient, err := config.NewMinIOClient(ctx, cfg, appLog)
	if err != nil {
		appLog.Warn("minio unavailable, tree export disabled", "error", err)
	} else {
		store = minioClient
	}

	catalog, err := i18n.Load(cfg.LocalesPath)
	if err != nil {
		appLog.Warn("locale catalog not loaded, falling back to default labels", "path", cfg.LocalesPath, "error", err)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redisClient, store, cfg, appLog)
	handlers := handler.NewHandlers(services, catalog)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(appLog),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, cfg)

	appLog.Info("server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Fatal("failed to start server", "error", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")
	v1.Get("/relationship-types", h.RelationshipType.List)

	protected := v1.Group("", middleware.AuthRequired(cfg.JWTSecret))

	connections := protected.Group("/connections")
	connections.Post("/", h.Connection.Create)
	connections.Get("/exists", h.Connection.Exists)
	connections.Post("/validate", h.Connection.Validate)
	connections.Get("/:connectionId", h.Connection.Get)
	connections.Get("/:connectionId/history", h.Connection.History)
	connections.Put("/:connectionId", h.Connection.Update)
	connections.Delete("/:connectionId", h.Connection.Delete)

	protected.Get("/persons/:personId/connections", h.Connection.ListForPerson)

	trees := protected.Group("/trees/:treeId")
	trees.Get("/connections", h.Connection.ListForTree)
	trees.Get("/view", h.Graph.GetTreeView)
	trees.Get("/persons/:personId/relations", h.Graph.GetPersonRelations)
	trees.Get("/persons/:personId/ancestors", h.Graph.GetAncestors)
	trees.Get("/persons/:personId/descendants", h.Graph.GetDescendants)
	trees.Post("/export", h.Graph.Export)
}
