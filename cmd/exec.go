package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"tournament-desk/config"
	"tournament-desk/internal/handlers"
	"tournament-desk/internal/realtime"
	"tournament-desk/internal/services"
	"tournament-desk/security"
	"tournament-desk/utils"
)

func Start() error {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis (optional, backs rate limiting only)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		defer redisClient.Close()
	}

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	pnConfig.UUID = cfg.PubNubUUID

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := realtime.NewPubNubPublisher(pn)
	defer publisher.Close()

	// Initialize services
	coordinator := services.NewCoordinator(publisher, cfg.AdminSecret)
	lotteryService := services.NewLotteryService(publisher, coordinator)

	// Disconnect detection: presence events on the session channels
	realtime.ListenPresence(ctx, pn, coordinator)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(coordinator)
	matchHandler := handlers.NewMatchHandler(coordinator)
	adminHandler := handlers.NewAdminHandler(coordinator, lotteryService)

	e := echo.New()

	if redisClient != nil {
		rateLimiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute, cfg.RateLimitWindow)
		e.Use(rateLimiter.AntiBotMiddleware())
		e.Use(rateLimiter.EventRateLimit())
	}

	// Session endpoints
	e.POST("/api/v1/session/login", sessionHandler.Login)
	e.POST("/api/v1/session/logout", sessionHandler.Logout)
	e.GET("/api/v1/session/history", sessionHandler.History)

	// Match endpoints
	e.POST("/api/v1/match/find", matchHandler.FindOpponent)
	e.POST("/api/v1/match/cancel", matchHandler.CancelSearch)
	e.POST("/api/v1/match/report-win", matchHandler.ReportWin)

	// Admin endpoints
	e.POST("/api/v1/admin/login", adminHandler.Login)
	e.POST("/api/v1/admin/logout", adminHandler.Logout)
	e.GET("/api/v1/admin/desks", adminHandler.Desks)
	e.POST("/api/v1/admin/report-win", adminHandler.ReportWin)
	e.POST("/api/v1/admin/lottery", adminHandler.DrawLottery)
	e.GET("/api/v1/admin/lotteries", adminHandler.Lotteries)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		if redisClient != nil {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return c.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	// Metrics server
	if cfg.EnableMetrics {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: e}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
