package database

import (
	"car-rental/pkg/utils"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to Redis and verifies the connection with a ping.
func InitRedis(config utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}

	return client, nil
}
