package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"rigforge/internal/allocator"
	"rigforge/internal/catalog"
	"rigforge/internal/config"
	"rigforge/internal/database"
	"rigforge/internal/handlers"
	"rigforge/internal/logger"
	"rigforge/internal/middleware"
	"rigforge/internal/services"
	"rigforge/internal/tokens"
	"rigforge/internal/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "rigforge/internal/docs" // Import swagger docs
)

// @title           Rigforge API
// @version         1.0
// @description     Rigforge generates budget-constrained PC builds from a parts catalog and manages each user's saved builds.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Catalog: load once up front, then refresh on the configured cadence.
	db := dbManager.DB()
	catalogStore := catalog.NewStore(db)
	if err := catalogStore.Refresh(context.Background()); err != nil {
		return fmt.Errorf("failed to load parts catalog: %w", err)
	}
	refreshCtx, stopRefresher := context.WithCancel(context.Background())
	defer stopRefresher()
	catalogStore.StartRefresher(refreshCtx, appConfig.CatalogRefreshInterval)

	alloc, err := allocator.New(
		allocator.DefaultTiers(),
		appConfig.PartTolerancePct,
		appConfig.BuildPriceCeiling,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
	if err != nil {
		return fmt.Errorf("failed to configure allocator: %w", err)
	}

	blacklist := tokens.NewBlacklist(appConfig.RedisAddr, appConfig.RedisPassword)
	defer blacklist.Close()

	// Initialize services
	userService := services.NewUserService(db)
	buildService := services.NewBuildService(db)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, buildService, blacklist)
	buildHandler := handlers.NewBuildHandler(buildService, alloc, catalogStore)
	partHandler := handlers.NewPartHandler(catalogStore)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(blacklist))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.DELETE("/users/me", authHandler.DeleteAccount)

	// Build routes
	builds := protected.Group("/builds")
	builds.POST("", buildHandler.CreateBuild)
	builds.GET("", buildHandler.GetBuilds)
	builds.GET("/:id", buildHandler.GetBuild)
	builds.PUT("/:id", buildHandler.ReplaceBuild)
	builds.PUT("/:id/component", buildHandler.EditComponent)
	builds.DELETE("/:id", buildHandler.DeleteBuild)

	// Catalog routes
	protected.GET("/parts", partHandler.GetParts)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/stats", adminHandler.GetStats)
	admin.GET("/users", adminHandler.GetUsers)

	log.Infof("Starting Rigforge backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
