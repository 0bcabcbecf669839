// Package cache provides a read-through redis cache for availability
// lookups. Availability responses are advisory, so serving a slightly
// stale answer is acceptable as long as the TTL stays short and write
// paths invalidate the affected dates.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"reservio/backend/internal/service/scheduling"
)

// AvailabilityQuerier is the part of the scheduling facade the cache
// wraps.
type AvailabilityQuerier interface {
	QueryAvailability(ctx context.Context, providerID uuid.UUID, date time.Time, serviceID uuid.UUID) (scheduling.AvailabilityResult, error)
}

// AvailabilityCache caches availability answers per provider and date.
// With a nil redis client it degrades to calling through directly.
type AvailabilityCache struct {
	client *redis.Client
	next   AvailabilityQuerier
	ttl    time.Duration
	logger *slog.Logger
}

func NewAvailabilityCache(client *redis.Client, next AvailabilityQuerier, ttl time.Duration, logger *slog.Logger) *AvailabilityCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{client: client, next: next, ttl: ttl, logger: logger}
}

func availabilityKey(providerID uuid.UUID, date time.Time, serviceID uuid.UUID) string {
	return fmt.Sprintf("availability:%s:%s:%s", providerID, date.UTC().Format("2006-01-02"), serviceID)
}

// QueryAvailability tries the cache first and falls back to the wrapped
// querier. Redis failures are logged and treated as misses so a cache
// outage never takes availability lookups down with it.
func (c *AvailabilityCache) QueryAvailability(ctx context.Context, providerID uuid.UUID, date time.Time, serviceID uuid.UUID) (scheduling.AvailabilityResult, error) {
	if c.client == nil {
		return c.next.QueryAvailability(ctx, providerID, date, serviceID)
	}

	key := availabilityKey(providerID, date, serviceID)
	cached, err := c.client.Get(ctx, key).Result()
	if err == nil && cached != "" {
		var res scheduling.AvailabilityResult
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			return res, nil
		}
		// Unreadable payload, recompute and overwrite below.
	} else if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("availability cache read failed", "key", key, "error", err)
	}

	res, err := c.next.QueryAvailability(ctx, providerID, date, serviceID)
	if err != nil {
		return scheduling.AvailabilityResult{}, err
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return res, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", "key", key, "error", err)
	}
	return res, nil
}

// Invalidate drops the cached entries for a provider on the given
// dates. Write paths call this after a booking is created, moved, or
// changes occupancy status.
func (c *AvailabilityCache) Invalidate(ctx context.Context, providerID uuid.UUID, dates ...time.Time) {
	if c.client == nil || len(dates) == 0 {
		return
	}

	pattern := fmt.Sprintf("availability:%s:%%s:*", providerID)
	for _, date := range dates {
		day := date.UTC().Format("2006-01-02")
		keys, err := c.client.Keys(ctx, fmt.Sprintf(pattern, day)).Result()
		if err != nil {
			c.logger.Warn("availability cache scan failed", "provider_id", providerID, "date", day, "error", err)
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("availability cache invalidation failed", "provider_id", providerID, "date", day, "error", err)
		}
	}
}
