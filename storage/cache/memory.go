package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Memory is an in-process Cache. Expired items are never returned and are
// evicted on the next write.
type Memory struct {
	items *ttlcache.Cache[string, []byte]
}

func NewMemory() *Memory {
	return &Memory{
		items: ttlcache.New[string, []byte](
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	item := m.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil, ErrNotFound
	}
	value := make([]byte, len(item.Value()))
	copy(value, item.Value())
	return value, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	m.items.DeleteExpired()
	m.items.Set(key, stored, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// Len counts the items still held, expired ones included until evicted.
func (m *Memory) Len() int {
	return m.items.Len()
}
