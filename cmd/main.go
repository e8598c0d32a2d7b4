package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"popi-backend/internal/accesscode"
	"popi-backend/internal/auth"
	"popi-backend/internal/config"
	"popi-backend/internal/database"
	"popi-backend/internal/handlers"
	"popi-backend/internal/ratelimit"
	"popi-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Initialize the access-code hasher; without a secret the subsystem
	// refuses to start.
	hasher, err := accesscode.NewHasher(cfg.App.AccessCodeSecret)
	if err != nil {
		log.Fatalf("Failed to initialize access code hasher: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Pick the rate-limit store: Redis when configured, in-process otherwise
	var limiter ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		store := ratelimit.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := store.Ping(context.Background()); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		limiter = store
		log.Printf("Using Redis rate-limit store at %s", cfg.Redis.Addr)
	}

	// Initialize services
	authService := services.NewAuthService(database.GetDB())
	applicationService := services.NewApplicationService(database.GetDB())
	placeService := services.NewPlaceService(database.GetDB())
	accessService := services.NewAccessService(database.GetDB(), hasher, limiter, services.AccessConfig{})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	partnerHandler := handlers.NewPartnerHandler(applicationService)
	placesHandler := handlers.NewPlacesHandler(placeService)
	adminHandler := handlers.NewAdminHandler(database.GetDB(), applicationService)
	accessHandler := handlers.NewAccessHandler(accessService, authService)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public place discovery
	router.GET("/api/places/public", placesHandler.GetPublicPlaces)

	// Access codes accept both authenticated and guest traffic
	accessRoutes := router.Group("/api/access-codes")
	accessRoutes.Use(auth.OptionalAuthMiddleware())
	{
		accessRoutes.POST("", accessHandler.IssueCode)
		accessRoutes.POST("/verify", accessHandler.VerifyCode)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.POST("/collaborator/apply", partnerHandler.Apply)
		api.GET("/partner/applications", partnerHandler.GetApplications)
		api.POST("/partner/applications/:id/bathroom", partnerHandler.CreateBathroom)
	}

	// Admin routes (protected + staff only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(adminHandler.AdminMiddleware())
	{
		admin.GET("/overview", adminHandler.GetOverview)
		admin.POST("/collaborators/:id/decision", adminHandler.DecideApplication)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
