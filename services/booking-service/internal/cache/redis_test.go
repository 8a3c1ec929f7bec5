package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
	"github.com/redis/go-redis/v9"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisSlotCache, *miniredis.Miniredis, *stepClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	clock := &stepClock{t: time.Date(2030, 3, 14, 9, 0, 0, 0, time.UTC)}
	c := NewRedisSlotCache(rdb, ttl)
	c.now = clock.now
	return c, mr, clock
}

func TestRedisEntryExpiresWhileDateStaysBusy(t *testing.T) {
	ctx := context.Background()
	c, mr, clock := newRedisCache(t, time.Minute)
	old := availability.SlotQuery{Date: "2030-03-14", ServiceID: "s1"}
	busy := availability.SlotQuery{Date: "2030-03-14", ServiceID: "s2"}

	if err := c.Put(ctx, old, availability.SlotResult{Slots: []string{"10:00"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Writes for other queries keep the date's hash alive well past the entry's ttl.
	for i := 0; i < 10; i++ {
		clock.t = clock.t.Add(50 * time.Second)
		mr.FastForward(50 * time.Second)
		if err := c.Put(ctx, busy, availability.SlotResult{Slots: []string{"11:00"}}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	if res, ok, err := c.Get(ctx, old); err != nil || ok {
		t.Fatalf("expected expired entry to miss, got ok=%v slots=%v err=%v", ok, res.Slots, err)
	}
	if mr.HGet(c.key(old.Date), field(old)) != "" {
		t.Fatalf("expected expired field to be removed")
	}
	res, ok, err := c.Get(ctx, busy)
	if err != nil || !ok {
		t.Fatalf("expected fresh entry to hit, got ok=%v err=%v", ok, err)
	}
	if len(res.Slots) != 1 || res.Slots[0] != "11:00" {
		t.Fatalf("unexpected slots: %v", res.Slots)
	}
}

func TestRedisInvalidateDateKeepsOtherDates(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newRedisCache(t, time.Minute)
	q1 := availability.SlotQuery{Date: "2030-03-14", ServiceID: "s1"}
	q2 := availability.SlotQuery{Date: "2030-03-14", ServiceID: "s1", StaffID: "st1"}
	q3 := availability.SlotQuery{Date: "2030-03-15", ServiceID: "s1"}
	for _, q := range []availability.SlotQuery{q1, q2, q3} {
		if err := c.Put(ctx, q, availability.SlotResult{Date: q.Date, Slots: []string{"09:00"}}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	if err := c.InvalidateDate(ctx, "2030-03-14"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	for _, q := range []availability.SlotQuery{q1, q2} {
		if _, ok, _ := c.Get(ctx, q); ok {
			t.Fatalf("expected %+v evicted", q)
		}
	}
	res, ok, err := c.Get(ctx, q3)
	if err != nil || !ok || res.Date != "2030-03-15" {
		t.Fatalf("expected other date kept, got ok=%v res=%+v err=%v", ok, res, err)
	}
}

func TestRedisPurgeOnlyTouchesSlotKeys(t *testing.T) {
	ctx := context.Background()
	c, mr, _ := newRedisCache(t, time.Minute)
	if err := mr.Set("ratelimit:client", "3"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for _, date := range []string{"2030-03-14", "2030-03-15", "2030-03-16"} {
		q := availability.SlotQuery{Date: date, ServiceID: "s1"}
		if err := c.Put(ctx, q, availability.SlotResult{Date: date}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	if err := c.Purge(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}
	for _, date := range []string{"2030-03-14", "2030-03-15", "2030-03-16"} {
		if mr.Exists(c.key(date)) {
			t.Fatalf("expected %s purged", date)
		}
	}
	if !mr.Exists("ratelimit:client") {
		t.Fatalf("purge must not touch unrelated keys")
	}
}

func TestRedisDateKeyExpires(t *testing.T) {
	ctx := context.Background()
	c, mr, _ := newRedisCache(t, time.Minute)
	q := availability.SlotQuery{Date: "2030-03-14", ServiceID: "s1"}
	if err := c.Put(ctx, q, availability.SlotResult{Date: q.Date}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(61 * time.Second)
	if mr.Exists(c.key(q.Date)) {
		t.Fatalf("expected idle date key to expire")
	}
}
