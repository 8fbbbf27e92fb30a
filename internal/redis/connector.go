package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aryodp/edgegate/internal/logger"
)

// ConnectOptions defines how the optional Redis snapshot backend is
// reached. Redis here is an alternative to the snapshot file, not a
// hard dependency: the app only builds a client when an address is
// configured.
type ConnectOptions struct {
	Addr         string        // ex: "localhost:6379"
	User         string        // optional username
	Password     string        // optional password
	DB           int           // Redis DB number
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration // timeout for the startup ping
	PoolSize     int
}

// New builds a Redis client and verifies connectivity with one ping.
func New(opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	log.Info("connecting to redis",
		logger.String("addr", opts.Addr),
		logger.Int("db", opts.DB))

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	log.Info("connected to redis", logger.String("addr", opts.Addr))
	return client, nil
}
