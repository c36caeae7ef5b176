package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/cloudpitch/davbridge/internal/config"
	"github.com/cloudpitch/davbridge/internal/handlers"
	"github.com/cloudpitch/davbridge/internal/logging"
	"github.com/cloudpitch/davbridge/internal/metrics"
	customMiddleware "github.com/cloudpitch/davbridge/internal/middleware"
	"github.com/cloudpitch/davbridge/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	if err := logging.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer func() { _ = logging.Sync() }()

	store, err := services.NewStore(cfg)
	if err != nil {
		logging.L().Fatal("build storage driver", zap.Error(err))
	}

	e := newServer(store, cfg)

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Fatal("server stopped", zap.Error(err))
		}
	}()
	logging.L().Info("listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("driver", cfg.StorageDriver),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logging.L().Error("shutdown", zap.Error(err))
	}
}

func newServer(store services.Store, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.JSONErrorHandler

	filesHandler := handlers.NewFilesHandler(store, cfg.MaxUploadSize)

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logging.L().Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(customMiddleware.SecurityHeaders())
	// Applied globally - it skips /health and /metrics internally
	e.Use(customMiddleware.TokenAuth(cfg.APIToken))

	// Probes
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// File API
	e.POST("/upload", filesHandler.Upload)
	e.POST("/upload/", filesHandler.Upload)
	e.POST("/directories", filesHandler.CreateDirectory)
	e.GET("/files", filesHandler.ListDirectory)
	e.DELETE("/files", filesHandler.Delete)

	return e
}
