package config

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes the Redis client used for session records and
// report rate limiting.
func ConnectRedis(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0, // default DB
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	return client, nil
}
