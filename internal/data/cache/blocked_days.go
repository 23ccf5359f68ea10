// Package cache keeps computed blocked days in Redis. One hash per car holds
// an entry per queried range, so a single DEL invalidates all of them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "car-rental:blocked-days:"

type BlockedDaysCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewBlockedDaysCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *BlockedDaysCache {
	return &BlockedDaysCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With(zap.String("cache", "blocked_days")),
	}
}

func key(carID uuid.UUID) string {
	return keyPrefix + carID.String()
}

func field(from, to time.Time) string {
	return utils.FormatDate(from) + "|" + utils.FormatDate(to)
}

// Get reports a miss on any Redis or decoding error.
func (c *BlockedDaysCache) Get(ctx context.Context, carID uuid.UUID, from, to time.Time) ([]time.Time, bool) {
	raw, err := c.rdb.HGet(ctx, key(carID), field(from, to)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Failed to read blocked days", zap.Error(err), zap.String("car_id", carID.String()))
		}
		return nil, false
	}

	var dates []string
	if err := json.Unmarshal(raw, &dates); err != nil {
		c.log.Warn("Discarding malformed cache entry", zap.Error(err), zap.String("car_id", carID.String()))
		return nil, false
	}

	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day, err := utils.ParseDate(d)
		if err != nil {
			return nil, false
		}
		days = append(days, day)
	}
	return days, true
}

func (c *BlockedDaysCache) Set(ctx context.Context, carID uuid.UUID, from, to time.Time, days []time.Time) {
	dates := make([]string, len(days))
	for i, day := range days {
		dates[i] = utils.FormatDate(day)
	}
	raw, err := json.Marshal(dates)
	if err != nil {
		return
	}

	k := key(carID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, k, field(from, to), raw)
	pipe.Expire(ctx, k, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("Failed to store blocked days", zap.Error(err), zap.String("car_id", carID.String()))
	}
}

func (c *BlockedDaysCache) Invalidate(ctx context.Context, carID uuid.UUID) {
	if err := c.rdb.Del(ctx, key(carID)).Err(); err != nil {
		c.log.Warn("Failed to invalidate blocked days", zap.Error(err), zap.String("car_id", carID.String()))
	}
}
