package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the client backing the status change feed.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client from a redis:// URL, or a bare host:port, with short timeouts.
// It does not dial; use Healthy to check connectivity.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		if url == "" {
			return nil, fmt.Errorf("redis url required")
		}
		opts = &redis.Options{Addr: url}
	}
	opts.DialTimeout = 2 * time.Second
	// BRPOP blocks for up to 5s; the read deadline must outlast it.
	opts.ReadTimeout = 10 * time.Second
	opts.WriteTimeout = 1 * time.Second
	return &Redis{Client: redis.NewClient(opts)}, nil
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
