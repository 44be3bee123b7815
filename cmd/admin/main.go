package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"adminpanel/internal/admin"
	"adminpanel/internal/config"
	"adminpanel/internal/handler"
	"adminpanel/internal/logger"
	"adminpanel/internal/metrics"
	"adminpanel/internal/queue"
	"adminpanel/internal/rosterclient"
	"adminpanel/internal/store"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		os.Stdout.WriteString(config.Usage())
		return
	}

	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	if err := cfg.RequireRoster(); err != nil {
		log.Error("invalid config", logger.Err(err))
		os.Exit(1)
	}

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Error("http server failed", logger.Err(err))
		os.Exit(1)
	}
}

func runHTTP(cfg config.App, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed, feedHealthy, closeFeed, err := buildFeed(cfg)
	if err != nil {
		return err
	}
	defer closeFeed()

	if cfg.QueueBackend == "memory" {
		// Nobody else can read an in-process feed, so drain it here.
		go func() {
			if err := admin.AuditFeed(ctx, feed, log.With(slog.String("component", "audit"))); err != nil {
				log.Error("audit feed stopped", logger.Err(err))
			}
		}()
	}

	roster := rosterclient.New(cfg.RosterAPIURL, cfg.RosterAPITimeout)
	ctrl := admin.NewController(log, roster,
		admin.WithFeed(feed),
		admin.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)
	defer ctrl.Close()

	go func() {
		if err := ctrl.Start(); err != nil {
			log.Warn("initial load incomplete", logger.Err(err))
		}
	}()

	h := handler.New(log, ctrl, feedHealthy)
	r := handler.NewRouter(h, handler.RouterConfig{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RosterAPITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.String("addr", srv.Addr), slog.String("roster_api", cfg.RosterAPIURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", logger.Err(err))
	}

	log.Info("server exited")
	return nil
}

// buildFeed picks the status change feed backend.
func buildFeed(cfg config.App) (queue.Queue, func(context.Context) bool, func(), error) {
	switch cfg.QueueBackend {
	case "redis":
		rdb, err := store.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return queue.NewRedisQueue(rdb.Client, cfg.FeedKey), rdb.Healthy, func() { _ = rdb.Close() }, nil
	case "memory":
		return queue.NewInMemory(64), nil, func() {}, nil
	default:
		return queue.Nop{}, nil, func() {}, nil
	}
}
