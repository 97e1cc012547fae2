package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"feedlink-backend/config"
	"feedlink-backend/database"
	"feedlink-backend/internal/api"
	"feedlink-backend/internal/middleware"
	"feedlink-backend/internal/services"
	"feedlink-backend/internal/upstream"
)

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowedOrigin := ""
		if origin != "" {
			for _, allowed := range cfg.AllowedOrigins {
				if origin == allowed {
					allowedOrigin = origin
					break
				}
			}
		}

		if allowedOrigin == "" && cfg.AllowAllOrigins {
			allowedOrigin = "*"
		}

		if allowedOrigin == "" && cfg.Environment == "production" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Origin not allowed",
			})
			return
		}

		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept, Origin")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	if !cfg.HasUpstream() {
		log.Println("Warning: BASE_URL is not set; proxy routes will answer with a configuration error")
	}

	// Initialize the session/snapshot database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Log slow requests
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if duration := time.Since(start); duration > 5*time.Second {
			log.Printf("SLOW REQUEST: %s %s took %v", c.Request.Method, c.Request.URL.Path, duration)
		}
	})

	router.Use(corsMiddleware(cfg))

	if os.Getenv("DISABLE_RATE_LIMITING") != "true" {
		securityConfig := middleware.DefaultSecurityConfig()
		securityConfig.RateLimitRequests = cfg.RateLimitRequests
		securityConfig.RateLimitWindow = time.Duration(cfg.RateLimitWindow) * time.Second
		router.Use(middleware.SecurityMiddleware(securityConfig))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "FeedLink API is running",
			"version": "1.0.0",
		})
	})

	// Initialize services
	client := upstream.NewClient(cfg.BaseURL, cfg.UpstreamTimeout)
	store := services.NewStoreService(client, cfg.StoreMaxAge)
	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiration)
	authMiddleware := middleware.NewAuthMiddleware(authService)
	sessionService := services.NewSessionService(db)
	wsService := services.NewWebSocketService(authService)

	inventoryService := services.NewInventoryService(store)
	orderService := services.NewOrderService(store, client, wsService.NotifyMetricsUpdated)
	claimService := services.NewWasteClaimService(store, client, wsService.NotifyMetricsUpdated)
	metricsService := services.NewMetricsService(store, db, cfg.SnapshotEnabled, cfg.SnapshotLimit)

	// Initialize handlers
	authHandlers := api.NewAuthHandlers(client, authService, sessionService, cfg.JWTExpiration)
	listingHandlers := api.NewListingHandlers(client, inventoryService)
	orderHandlers := api.NewOrderHandlers(client, orderService)
	claimHandlers := api.NewWasteClaimHandlers(client, claimService)
	userHandlers := api.NewUserHandlers(client)
	dashboardHandlers := api.NewDashboardHandlers(metricsService, store, wsService)

	// Periodic cleanup of expired sessions and revoked tokens
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				authService.CleanupExpiredTokens()
				if err := sessionService.CleanupExpiredSessions(); err != nil {
					log.Printf("Session cleanup failed: %v", err)
				}
			case <-cleanupDone:
				return
			}
		}
	}()

	// API routes
	apiGroup := router.Group("/api/v1")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success":   true,
				"status":    "healthy",
				"message":   "FeedLink API is running",
				"timestamp": time.Now().Unix(),
			})
		})

		// Authentication routes with stricter rate limiting
		auth := apiGroup.Group("/auth")
		auth.Use(middleware.AuthRateLimitMiddleware())
		{
			auth.POST("/login", authHandlers.Login)
			auth.POST("/session", authHandlers.RestoreSession)
			auth.POST("/signup", authHandlers.Signup)
			auth.POST("/reset-password", authHandlers.ResetPassword)
			auth.POST("/logout", authMiddleware.AuthRequired(), authHandlers.Logout)
		}

		// WebSocket route (validates the token itself)
		apiGroup.GET("/ws", wsService.HandleWebSocket)

		// Protected routes
		protected := apiGroup.Group("/")
		protected.Use(authMiddleware.AuthRequired())
		{
			listings := protected.Group("/listings")
			{
				listings.GET("", listingHandlers.GetListings)
				listings.POST("", listingHandlers.CreateListing)
				listings.PUT("/:id", listingHandlers.UpdateListing)
				listings.DELETE("/:id", listingHandlers.DeleteListing)
				listings.POST("/upload-csv", listingHandlers.UploadCSV)
			}

			protected.GET("/inventory", listingHandlers.GetInventory)

			orders := protected.Group("/orders")
			{
				orders.GET("", orderHandlers.GetOrders)
				orders.GET("/:id", orderHandlers.GetOrder)
				orders.PATCH("/:id", orderHandlers.UpdateOrderStatus)
			}

			wasteclaims := protected.Group("/wasteclaims")
			{
				wasteclaims.GET("", claimHandlers.GetClaims)
				wasteclaims.PATCH("", claimHandlers.UpdateClaimStatusByBody)
				wasteclaims.GET("/:id", claimHandlers.GetClaim)
				wasteclaims.PATCH("/:id", claimHandlers.UpdateClaimStatus)
				wasteclaims.POST("/:id/verify-pin", claimHandlers.VerifyPIN)
			}

			protected.GET("/users", userHandlers.GetProducers)

			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/metrics", dashboardHandlers.GetMetrics)
				dashboard.GET("/monthly", dashboardHandlers.GetMonthly)
				dashboard.GET("/badges", dashboardHandlers.GetBadges)
				dashboard.GET("/history", dashboardHandlers.GetHistory)
				dashboard.POST("/refresh", dashboardHandlers.Refresh)
			}
		}
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("FeedLink API server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(cleanupDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server shutdown complete")
}
