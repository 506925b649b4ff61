package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicpulse/internal/badges"
	"civicpulse/internal/clock"
	"civicpulse/internal/config"
	"civicpulse/internal/gemini"
	"civicpulse/internal/handler"
	"civicpulse/internal/service"
	"civicpulse/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting CivicPulse report service...")

	// Load .env before the config so ${GEMINI_API_KEY} expands
	if err := godotenv.Load(); err != nil {
		logger.Info(".env file not found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize Gemini client (triage + predictions)
	aiClient, err := gemini.NewClient(gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		DeepModel:  cfg.Gemini.DeepModel,
		MaxRetries: cfg.Gemini.MaxRetries,
		RetryDelay: cfg.Gemini.RetryDelay,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}
	defer aiClient.Close()

	// Initialize in-memory state
	now := time.Now()
	reports := store.NewReportStore(logger)
	users := store.NewUserStore(store.SeedUsers(now), logger)
	userBadges := store.NewUserBadgeStore()
	evaluator := badges.NewEvaluator(badges.Catalog())

	// Initialize the lifecycle engine
	engine := service.NewEngine(aiClient, reports, users, userBadges, evaluator, clock.System{}, logger)

	// Initialize HTTP handler
	apiHandler := handler.NewHandler(engine, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register routes
	apiHandler.RegisterRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("CivicPulse report service is running",
		zap.String("port", cfg.Server.Port),
		zap.String("model", cfg.Gemini.Model))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
