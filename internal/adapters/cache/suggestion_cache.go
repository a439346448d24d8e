package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tasknest/core/internal/ports"
)

const keySuggestion = "suggestion:user:"

// SuggestionCache caches computed suggestion responses per user in Redis.
// A miss is (nil, nil); Redis being unreachable surfaces as an error the
// caller is free to ignore.
type SuggestionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSuggestionCache returns a new SuggestionCache.
func NewSuggestionCache(rdb *redis.Client, ttl time.Duration) *SuggestionCache {
	return &SuggestionCache{rdb: rdb, ttl: ttl}
}

func suggestionKey(userID int64) string {
	return fmt.Sprintf("%s%d", keySuggestion, userID)
}

// Get returns the cached suggestion or nil on miss.
func (c *SuggestionCache) Get(ctx context.Context, userID int64) (*ports.SuggestionResponse, error) {
	b, err := c.rdb.Get(ctx, suggestionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var suggestion ports.SuggestionResponse
	if err := json.Unmarshal(b, &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// Set stores the suggestion with the configured TTL.
func (c *SuggestionCache) Set(ctx context.Context, userID int64, suggestion *ports.SuggestionResponse) error {
	b, err := json.Marshal(suggestion)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, suggestionKey(userID), b, c.ttl).Err()
}

// Invalidate removes the user's cached suggestion (cache invalidation on
// task/group writes).
func (c *SuggestionCache) Invalidate(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, suggestionKey(userID)).Err()
}
