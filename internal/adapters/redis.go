package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"bugout/internal/bootstrap"
	errs "bugout/internal/errors"
)

type AdapterRedis struct {
	client *redis.Client
	url    string
	cfg    *bootstrap.Config
}

func NewAdapterRedis(cfg *bootstrap.Config, url string) *AdapterRedis {
	return &AdapterRedis{
		cfg: cfg,
		url: url,
	}
}

func (a *AdapterRedis) Init(ctx context.Context) error {
	opts, err := parseRedisURL(a.url)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrConfig, err)
	}
	opts.PoolSize = a.cfg.PoolSize
	opts.PoolTimeout = a.cfg.PoolTimeout()
	// blocking stream reads must outlive the default read timeout
	opts.ReadTimeout = a.cfg.Block() + 2*time.Second
	opts.ContextTimeoutEnabled = true

	a.client = redis.NewClient(opts)

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.client.Ping(ctxPing).Err(); err != nil {
		return fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return nil
}

// parseRedisURL accepts both redis:// URLs and bare host:port pairs.
func parseRedisURL(raw string) (*redis.Options, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty redis address")
	}
	if strings.Contains(raw, "://") {
		return redis.ParseURL(raw)
	}
	return &redis.Options{Addr: raw}, nil
}

func (a *AdapterRedis) GetClient() *redis.Client {
	return a.client
}

func (a *AdapterRedis) Close(ctx context.Context) error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}
