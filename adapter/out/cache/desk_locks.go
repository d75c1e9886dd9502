// Package cache provides Redis-backed coordination adapters.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ChannelLockTTL = 30 * time.Second
	DedupeTTL      = 5 * time.Minute
)

// =============================================================================
// Channel Lock (Redis SetNX)
// =============================================================================

// ChannelLock implements out.ChannelLocker with a Redis SetNX lease.
// The TTL bounds the lock lifetime so a crashed worker cannot wedge a
// channel.
type ChannelLock struct {
	redis *redis.Client
}

func NewChannelLock(redisClient *redis.Client) *ChannelLock {
	return &ChannelLock{redis: redisClient}
}

func (l *ChannelLock) key(channelID int64) string {
	return fmt.Sprintf("triage:lock:channel:%d", channelID)
}

// Acquire takes the per-channel lease. Without Redis configured every
// acquisition succeeds; single-process deployments are already serialized
// by the worker pool's per-channel ordering.
func (l *ChannelLock) Acquire(ctx context.Context, channelID int64) (bool, error) {
	if l.redis == nil {
		return true, nil
	}
	return l.redis.SetNX(ctx, l.key(channelID), "1", ChannelLockTTL).Result()
}

func (l *ChannelLock) Release(ctx context.Context, channelID int64) {
	if l.redis == nil {
		return
	}
	_ = l.redis.Del(ctx, l.key(channelID))
}

// =============================================================================
// Update Dedupe (webhook idempotency)
// =============================================================================

// UpdateDedupe suppresses webhook re-deliveries of the same platform update.
type UpdateDedupe struct {
	redis *redis.Client
}

func NewUpdateDedupe(redisClient *redis.Client) *UpdateDedupe {
	return &UpdateDedupe{redis: redisClient}
}

// Seen marks the update id and reports whether it was already processed.
// Redis being down fails open: a double-classified message is cheaper than
// a dropped one, and message Create upserts on the platform id anyway.
func (d *UpdateDedupe) Seen(ctx context.Context, updateID int64) bool {
	if d.redis == nil {
		return false
	}
	key := fmt.Sprintf("webhook:update:%d", updateID)
	ok, err := d.redis.SetNX(ctx, key, "1", DedupeTTL).Result()
	if err != nil {
		return false
	}
	return !ok
}
