package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
)

// MemorySlotCache is the in-process SlotCache used when no Redis is configured.
type MemorySlotCache struct {
	lru *expirable.LRU[string, availability.SlotResult]
}

func NewMemorySlotCache(size int, ttl time.Duration) *MemorySlotCache {
	if size <= 0 {
		size = 1024
	}
	return &MemorySlotCache{lru: expirable.NewLRU[string, availability.SlotResult](size, nil, ttl)}
}

func memoryKey(date, field string) string {
	return date + "|" + field
}

func (m *MemorySlotCache) Get(_ context.Context, q availability.SlotQuery) (availability.SlotResult, bool, error) {
	res, ok := m.lru.Get(memoryKey(q.Date, field(q)))
	if !ok {
		return availability.SlotResult{}, false, nil
	}
	res.Slots = append([]string(nil), res.Slots...)
	return res, true, nil
}

func (m *MemorySlotCache) Put(_ context.Context, q availability.SlotQuery, res availability.SlotResult) error {
	res.Slots = append([]string(nil), res.Slots...)
	m.lru.Add(memoryKey(q.Date, field(q)), res)
	return nil
}

func (m *MemorySlotCache) InvalidateDate(_ context.Context, date string) error {
	prefix := memoryKey(date, "")
	for _, k := range m.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			m.lru.Remove(k)
		}
	}
	return nil
}

func (m *MemorySlotCache) Purge(context.Context) error {
	m.lru.Purge()
	return nil
}
