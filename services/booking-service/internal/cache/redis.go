package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "salonbook:slots:"

// RedisSlotCache stores one hash per date so a single DEL invalidates every query for it.
// Each field carries its own deadline; the key TTL only reclaims dates nobody reads.
type RedisSlotCache struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

type redisEntry struct {
	ExpiresAt int64                   `json:"expires_at,omitempty"`
	Result    availability.SlotResult `json:"result"`
}

func NewRedisSlotCache(rdb redis.UniversalClient, ttl time.Duration) *RedisSlotCache {
	return &RedisSlotCache{rdb: rdb, ttl: ttl, prefix: defaultPrefix, now: time.Now}
}

func (c *RedisSlotCache) key(date string) string {
	return c.prefix + date
}

func (c *RedisSlotCache) Get(ctx context.Context, q availability.SlotQuery) (availability.SlotResult, bool, error) {
	key, f := c.key(q.Date), field(q)
	raw, err := c.rdb.HGet(ctx, key, f).Bytes()
	if errors.Is(err, redis.Nil) {
		return availability.SlotResult{}, false, nil
	}
	if err != nil {
		return availability.SlotResult{}, false, err
	}
	var entry redisEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Unreadable entries are treated as misses and overwritten on the next Put.
		return availability.SlotResult{}, false, nil
	}
	if entry.ExpiresAt > 0 && c.now().UnixMilli() >= entry.ExpiresAt {
		if err := c.rdb.HDel(ctx, key, f).Err(); err != nil {
			return availability.SlotResult{}, false, err
		}
		return availability.SlotResult{}, false, nil
	}
	return entry.Result, true, nil
}

func (c *RedisSlotCache) Put(ctx context.Context, q availability.SlotQuery, res availability.SlotResult) error {
	entry := redisEntry{Result: res}
	if c.ttl > 0 {
		entry.ExpiresAt = c.now().Add(c.ttl).UnixMilli()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := c.key(q.Date)
	_, err = c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, field(q), raw)
		if c.ttl > 0 {
			p.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	return err
}

func (c *RedisSlotCache) InvalidateDate(ctx context.Context, date string) error {
	return c.rdb.Del(ctx, c.key(date)).Err()
}

func (c *RedisSlotCache) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.prefix+"*", 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
