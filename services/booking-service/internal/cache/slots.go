package cache

import (
	"context"
	"log/slog"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
)

type SlotSource interface {
	AvailableSlots(ctx context.Context, q availability.SlotQuery) (availability.SlotResult, error)
}

// CachedSlots serves slot queries from a SlotCache, falling back to the source. Cache
// failures are logged and never fail the query.
type CachedSlots struct {
	src    SlotSource
	cache  SlotCache
	logger *slog.Logger
}

func NewCachedSlots(src SlotSource, cache SlotCache, logger *slog.Logger) *CachedSlots {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSlots{src: src, cache: cache, logger: logger}
}

func (c *CachedSlots) AvailableSlots(ctx context.Context, q availability.SlotQuery) (availability.SlotResult, error) {
	if res, ok, err := c.cache.Get(ctx, q); err != nil {
		c.logger.Warn("slot cache read failed", "date", q.Date, "err", err)
	} else if ok {
		return res, nil
	}

	res, err := c.src.AvailableSlots(ctx, q)
	if err != nil {
		return availability.SlotResult{}, err
	}
	if err := c.cache.Put(ctx, q, res); err != nil {
		c.logger.Warn("slot cache write failed", "date", q.Date, "err", err)
	}
	return res, nil
}

// InvalidateDate lets CachedSlots serve as the booking workflow's invalidator.
func (c *CachedSlots) InvalidateDate(ctx context.Context, date string) error {
	return c.cache.InvalidateDate(ctx, date)
}

func (c *CachedSlots) Purge(ctx context.Context) error {
	return c.cache.Purge(ctx)
}
