package router

import (
	"log"
	"time"

	"github.com/anvarbek/vitrina/backend/internal/cache"
	"github.com/anvarbek/vitrina/backend/internal/handlers"
	"github.com/anvarbek/vitrina/backend/internal/middleware"
	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/realtime"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/anvarbek/vitrina/backend/internal/scheduler"
	"github.com/anvarbek/vitrina/backend/internal/services"
	"github.com/anvarbek/vitrina/backend/pkg/config"
	"github.com/anvarbek/vitrina/backend/pkg/images"
	"github.com/anvarbek/vitrina/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, objectStorage storage.ObjectStorage, watermarker images.Watermarker) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Review{},
		&models.ProductReaction{},
		&models.ReviewReaction{},
		&models.SavedProduct{},
		&models.Notification{},
		&models.DetectionLog{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	productRepo := repositories.NewMongoProductRepository(mgClient.Database("vitrina"))
	reviewRepo := repositories.NewPostgresReviewRepository(pgdb)
	productReactionRepo := repositories.NewPostgresProductReactionRepository(pgdb)
	reviewReactionRepo := repositories.NewPostgresReviewReactionRepository(pgdb)
	savedRepo := repositories.NewPostgresSavedProductRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	detectionRepo := repositories.NewPostgresDetectionLogRepository(pgdb)

	// --- Shared infrastructure ---
	cacheStore := cache.NewMemoryStore(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	hub := realtime.NewHub()

	// --- Core services (hub injected as an interface to break the
	// notification/transport cycle) ---
	notificationService := services.NewNotificationService(notificationRepo, cacheStore)
	dispatcher := services.NewDispatcher(notificationService, userRepo, hub)
	compensator := services.NewCompensator(dispatcher, reviewRepo)
	escalation := services.NewEscalationService(detectionRepo, userRepo, dispatcher, hub, cfg.SecurityWarnThreshold, cfg.SecurityLockThreshold)

	// --- WebSocket endpoint (token handshake, no HTTP middleware) ---
	wsHandler := realtime.NewHandler(hub)
	wsHandler.RegisterRoutes(e)
	log.Println("WebSocket endpoint configured.")

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	api.Use(middleware.BanGuard(userRepo))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, dispatcher, hub)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Product routes
	productHandler := handlers.NewProductHandler(productRepo, cacheStore, objectStorage, watermarker)
	productHandler.RegisterProductRoutes(api)
	log.Println("Product routes configured.")

	// Review routes
	reviewHandler := handlers.NewReviewHandler(reviewRepo, productRepo, userRepo, dispatcher, compensator)
	reviewHandler.RegisterReviewRoutes(api)
	log.Println("Review routes configured.")

	// Reaction routes
	reactionHandler := handlers.NewReactionHandler(productReactionRepo, reviewReactionRepo, productRepo, reviewRepo, userRepo, dispatcher, compensator, hub)
	reactionHandler.RegisterReactionRoutes(api)
	log.Println("Reaction routes configured.")

	// Saved product routes
	savedHandler := handlers.NewSavedProductHandler(savedRepo, productRepo, userRepo, dispatcher, compensator, hub)
	savedHandler.RegisterSavedProductRoutes(api)
	log.Println("Saved product routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationService, dispatcher, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Security detection routes
	securityHandler := handlers.NewSecurityHandler(escalation, detectionRepo)
	securityHandler.RegisterSecurityRoutes(api)
	log.Println("Security routes configured.")

	// --- Admin routes ---
	admin := e.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware())
	admin.Use(middleware.RequireAdmin())
	userHandler.RegisterAdminRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	notificationHandler.RegisterAdminRoutes(admin)
	securityHandler.RegisterAdminRoutes(admin)
	log.Println("Admin routes configured.")

	// Daily detection-log purge
	scheduler.StartPurgeJobs(detectionRepo)
	log.Println("Purge jobs started.")

	log.Println("All routes configured.")
}
