package main

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

	"github.com/aidarbek/todochat/config"
	ctxlog "github.com/aidarbek/todochat/internal/log"
	"github.com/aidarbek/todochat/internal/metrics"
	"github.com/aidarbek/todochat/internal/realtime"
	"github.com/aidarbek/todochat/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"

	sloggin "github.com/samber/slog-gin"
)

// The chat server is deliberately stateless: no database, no history.
// Everything lives in the hub for the lifetime of the process.
func main() {
	cfg, err := config.LoadChat()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	metrics.Register()

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up"})
	})
	r.GET("/ws", realtime.ServeWS(hub, logger))

	srv := http.Server{
		Addr:    ":" + cfg.ChatPort,
		Handler: r,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, nil)

	go func() {
		logger.Info("chat server started", "port", cfg.ChatPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("chat server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("chat server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
