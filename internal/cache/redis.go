// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"duskblog/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// errorCounter feeds failed commands into the RedisErrors metric.
// A cache miss (redis.Nil) is not a failure.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// parseOptions accepts either a bare host:port or a redis:// URL.
func parseOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// InitRedis connects the package client to addr. The cache is optional:
// any failure here leaves the client nil and every helper falls through
// to its fetch function.
func InitRedis(addr string) {
	opts, err := parseOptions(addr)
	if err != nil {
		log.Printf("cache disabled, bad redis address %q: %v", addr, err)
		client = nil
		return
	}

	c := redis.NewClient(opts)
	c.AddHook(errorCounter{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		log.Printf("cache disabled, redis unreachable: %v", err)
		client = nil
		return
	}

	client = c
	log.Printf("redis connected at %s", opts.Addr)
}

// SetClient replaces the client instance. Tests use this with miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}
