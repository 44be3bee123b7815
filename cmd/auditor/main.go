package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adminpanel/internal/admin"
	"adminpanel/internal/config"
	"adminpanel/internal/logger"
	"adminpanel/internal/queue"
	"adminpanel/internal/store"
)

// Auditor consumes the Redis status change feed and logs every change.
func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	if cfg.QueueBackend != "redis" {
		log.Error("auditor needs QUEUE_BACKEND=redis", "queue_backend", cfg.QueueBackend)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := store.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Error("redis config invalid", logger.Err(err))
		os.Exit(1)
	}
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if !rdb.Healthy(pingCtx) {
		log.Warn("redis not reachable yet, will keep polling")
	}
	cancel()

	q := queue.NewRedisQueue(rdb.Client, cfg.FeedKey)

	log.Info("auditor started, waiting for status changes", "key", cfg.FeedKey)
	if err := admin.AuditFeed(ctx, q, log); err != nil {
		log.Error("feed consume failed", logger.Err(err))
		os.Exit(1)
	}
	log.Info("auditor stopped")
}
