// Package cache keeps the derived seat-map view in Redis between
// bookings. A miss is never an error; the allocator recomputes and
// repopulates.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"eventx/internal/logger"
	"eventx/internal/models"
)

const seatMapKeyPrefix = "seatmap:"

type SeatMapCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewSeatMapCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SeatMapCache {
	return &SeatMapCache{Client: client, TTL: ttl, Logger: log}
}

// InitializeRedis connects and pings so a misconfigured address fails at
// startup, not on the first booking.
func InitializeRedis(addr string, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error("REDIS", fmt.Sprintf("failed to connect to Redis at %s: %v", addr, err))
		return nil, err
	}

	log.Info("REDIS", fmt.Sprintf("connected to Redis at %s", addr))
	return client, nil
}

func seatMapKey(eventID string) string {
	return seatMapKeyPrefix + eventID
}

// Get returns the cached view, or (nil, nil) on a miss.
func (c *SeatMapCache) Get(ctx context.Context, eventID string) (*models.AvailabilityView, error) {
	raw, err := c.Client.Get(ctx, seatMapKey(eventID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var view models.AvailabilityView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		// A corrupt entry behaves like a miss.
		c.Logger.Warn("REDIS", fmt.Sprintf("dropping corrupt seat map entry for event %s: %v", eventID, err))
		_ = c.Client.Del(ctx, seatMapKey(eventID)).Err()
		return nil, nil
	}
	return &view, nil
}

func (c *SeatMapCache) Set(ctx context.Context, view *models.AvailabilityView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, seatMapKey(view.EventID), raw, c.TTL).Err()
}

func (c *SeatMapCache) Invalidate(ctx context.Context, eventID string) error {
	return c.Client.Del(ctx, seatMapKey(eventID)).Err()
}
