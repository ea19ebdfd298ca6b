package main

import (
	"ricemill-service/internal/handler"
	"ricemill-service/internal/middleware"
	"ricemill-service/pkg/config"
	"ricemill-service/pkg/database"
	"ricemill-service/pkg/jwtutil"
	"ricemill-service/pkg/logger"
	"ricemill-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting rice mill service...", zap.String("environment", cfg.Server.Env))

	// Connect to the database and migrate the schema
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Construct the token service from config
	jwt := jwtutil.New(&cfg.JWT)

	// Construct the request surface with its dependencies
	h := handler.New(db, jwt)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)
	e.POST("/token", h.Login)

	// All remaining routes require a valid token whose subject resolves to
	// an existing active user
	authed := e.Group("")
	authed.Use(middleware.Auth(db, jwt))

	authed.GET("/users/me", h.GetProfile)

	// Company management (admin only)
	authed.POST("/companies", h.CreateCompany)
	authed.GET("/companies", h.ListCompanies)
	authed.PATCH("/companies/:id", h.UpdateCompany)
	authed.DELETE("/companies/:id", h.DeleteCompany)

	// User management (admin only)
	authed.POST("/users", h.CreateUser)
	authed.GET("/users", h.ListUsers)
	authed.PATCH("/users/:id", h.UpdateUser)
	authed.DELETE("/users/:id", h.DeleteUser)

	// Farmer management (company scoped for non-admins)
	authed.POST("/farmers", h.CreateFarmer)
	authed.GET("/farmers", h.ListFarmers)
	authed.PATCH("/farmers/:id", h.UpdateFarmer)
	authed.DELETE("/farmers/:id", h.DeleteFarmer)

	// Transactional entries
	authed.POST("/seed-distributions", h.CreateSeedDistribution)
	authed.POST("/harvest-entries", h.CreateHarvestEntry)
	authed.GET("/farmers/:id/seed-distributions", h.ListSeedDistributions)
	authed.GET("/farmers/:id/harvest-entries", h.ListHarvestEntries)

	// Receipts
	authed.POST("/farmers/:id/receipts", h.GenerateReceipt)
	authed.GET("/farmers/:id/receipts", h.ListReceipts)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
