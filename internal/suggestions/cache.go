// internal/suggestions/cache.go

package suggestions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const cacheTTL = 10 * time.Minute

// Cache keeps catalog listings in Redis. The catalog changes rarely and is
// read on every planning pass, so a short TTL plus invalidation on writes
// is enough.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func listKey(category string) string {
	if category == "" {
		category = "_all"
	}
	return fmt.Sprintf("suggestions:list:%s", category)
}

func (c *Cache) GetList(ctx context.Context, category string) ([]*Suggestion, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, listKey(category)).Bytes()
	if err != nil {
		return nil, false
	}

	var suggestions []*Suggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		return nil, false
	}
	return suggestions, true
}

func (c *Cache) SetList(ctx context.Context, category string, suggestions []*Suggestion) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	c.client.Set(ctx, listKey(category), data, cacheTTL)
}

// Invalidate drops all cached listings. Fired on every catalog write.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, "suggestions:list:*", 100).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}
