package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akovalyov/url-shortener/internal/cache"
)

// Key namespaces. Forward entries map an original URL to its short code,
// reverse entries map a short code back to the original URL, and click
// counters accumulate unflushed clicks per short code.
const (
	forwardKeyPrefix = "url:"
	reverseKeyPrefix = "short:"
	clicksKeyPrefix  = "clicks:"
)

// URLCache is a Redis-backed cache for url mappings and pending click counts.
type URLCache struct {
	client *redis.Client
}

func NewURLCache(client *redis.Client) *URLCache {
	return &URLCache{
		client: client,
	}
}

// GetShortCode returns the cached short code for an original URL.
// It returns cache.ErrCacheMiss when no forward entry exists.
func (c *URLCache) GetShortCode(ctx context.Context, originalURL string) (string, error) {
	const op = "cache.redis.URLCache.GetShortCode"

	shortCode, err := c.client.Get(ctx, forwardKeyPrefix+originalURL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, cache.ErrCacheMiss)
		}

		return "", fmt.Errorf("%s: failed to get forward entry: %w", op, err)
	}

	return shortCode, nil
}

// SetShortCode writes the forward entry with the given TTL.
func (c *URLCache) SetShortCode(ctx context.Context, originalURL, shortCode string, ttl time.Duration) error {
	const op = "cache.redis.URLCache.SetShortCode"

	if err := c.client.Set(ctx, forwardKeyPrefix+originalURL, shortCode, ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set forward entry: %w", op, err)
	}

	return nil
}

// GetOriginalURL returns the cached original URL for a short code.
// It returns cache.ErrCacheMiss when no reverse entry exists.
func (c *URLCache) GetOriginalURL(ctx context.Context, shortCode string) (string, error) {
	const op = "cache.redis.URLCache.GetOriginalURL"

	originalURL, err := c.client.Get(ctx, reverseKeyPrefix+shortCode).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, cache.ErrCacheMiss)
		}

		return "", fmt.Errorf("%s: failed to get reverse entry: %w", op, err)
	}

	return originalURL, nil
}

// SetOriginalURL writes the reverse entry with the given TTL.
func (c *URLCache) SetOriginalURL(ctx context.Context, shortCode, originalURL string, ttl time.Duration) error {
	const op = "cache.redis.URLCache.SetOriginalURL"

	if err := c.client.Set(ctx, reverseKeyPrefix+shortCode, originalURL, ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set reverse entry: %w", op, err)
	}

	return nil
}

// RegisterClick atomically increments the pending click counter for a short
// code. The counter is created at zero when absent and carries no TTL; it
// lives until a flush removes it.
func (c *URLCache) RegisterClick(ctx context.Context, shortCode string) error {
	const op = "cache.redis.URLCache.RegisterClick"

	if err := c.client.IncrBy(ctx, clicksKeyPrefix+shortCode, 1).Err(); err != nil {
		return fmt.Errorf("%s: failed to increment click counter: %w", op, err)
	}

	return nil
}

// PendingClicks enumerates all pending click counters and returns them as a
// map of short code to accumulated count. Counters that disappear between
// the scan and the read are skipped.
func (c *URLCache) PendingClicks(ctx context.Context) (map[string]int64, error) {
	const op = "cache.redis.URLCache.PendingClicks"

	pending := make(map[string]int64)

	iter := c.client.Scan(ctx, 0, clicksKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		val, err := c.client.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to read click counter %q: %w", op, key, err)
		}

		count, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: malformed click counter %q: %w", op, key, err)
		}

		pending[key[len(clicksKeyPrefix):]] = count
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to scan click counters: %w", op, err)
	}

	return pending, nil
}

// DropPendingClicks removes the pending click counter for a short code.
func (c *URLCache) DropPendingClicks(ctx context.Context, shortCode string) error {
	const op = "cache.redis.URLCache.DropPendingClicks"

	if err := c.client.Del(ctx, clicksKeyPrefix+shortCode).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete click counter: %w", op, err)
	}

	return nil
}
