package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"building-risk-service/config"
	"building-risk-service/handlers"
	"building-risk-service/metrics"
	"building-risk-service/middleware"
	"building-risk-service/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// The service keeps serving with incomplete Azure settings: analysis and
	// the pipeline health check report service-unavailable until configured.
	if cfg.LLMProvider != "stub" &&
		(cfg.AzureOpenAIEndpoint == "" || cfg.AzureOpenAIAPIKey == "" || cfg.AzureOpenAIDeployment == "") {
		log.Warn("Azure OpenAI configuration incomplete; analysis requests will fail until AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and AZURE_OPENAI_DEPLOYMENT are set")
	}

	metrics.Register()

	// Initialize the analysis service and handlers
	analysisService := service.New(cfg)
	defer analysisService.Close()

	h := handlers.NewHandlers(analysisService, cfg.MaxImageDimension)

	// Setup HTTP server
	router := gin.Default()

	// Liveness and metrics (no rate limit)
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/analysis/health", h.PipelineHealth)
		api.GET("/categories", h.Categories)

		rateLimited := api.Group("/")
		rateLimited.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		{
			rateLimited.POST("/analysis", h.AnalyzeBuilding)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
