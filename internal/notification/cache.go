package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const unreadCacheTTL = 5 * time.Minute

// UnreadCache caches per-user unread counters in Redis so the badge poll on
// every page load stays off Postgres. Cache misses and Redis failures fall
// through to the database.
type UnreadCache struct {
	client redis.UniversalClient
}

// NewUnreadCache creates an UnreadCache. A nil client disables caching.
func NewUnreadCache(client redis.UniversalClient) *UnreadCache {
	return &UnreadCache{client: client}
}

func unreadKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}

// Get returns the cached unread count, with ok=false on miss or error.
func (c *UnreadCache) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	if c.client == nil {
		return 0, false
	}
	count, err := c.client.Get(ctx, unreadKey(userID)).Int()
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the unread count with a TTL.
func (c *UnreadCache) Set(ctx context.Context, userID uuid.UUID, count int) {
	if c.client == nil {
		return
	}
	_ = c.client.Set(ctx, unreadKey(userID), count, unreadCacheTTL).Err()
}

// Invalidate drops the cached counter after any write touching it.
func (c *UnreadCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c.client == nil {
		return
	}
	_ = c.client.Del(ctx, unreadKey(userID)).Err()
}
