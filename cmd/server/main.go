package main

import (
	"context"
	"log"

	"github.com/anvarbek/vitrina/backend/internal/router"
	"github.com/anvarbek/vitrina/backend/pkg/config"
	"github.com/anvarbek/vitrina/backend/pkg/firebase"
	"github.com/anvarbek/vitrina/backend/pkg/images"
	"github.com/anvarbek/vitrina/backend/pkg/storage"
	"github.com/anvarbek/vitrina/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase-backed object storage
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	objectStorage := storage.NewGCSStorage(firebaseApp.Bucket)

	watermarker, err := images.NewOverlayWatermarker("./watermark.png", 0.6)
	if err != nil {
		log.Fatalf("Failed to load watermark overlay: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, objectStorage, watermarker)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
