package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const sweepEvery = 256

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process TTL store. Expired entries are dropped lazily.
type Memory struct {
	name string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
	sets    int

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory creates a memory store whose entries live for ttl.
func NewMemory(name string, ttl time.Duration) *Memory {
	return &Memory{
		name:    name,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (m *Memory) Name() string {
	return m.name
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.misses.Add(1)
		return nil, false, nil
	}

	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if cur, ok := m.entries[key]; ok && m.now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		m.misses.Add(1)
		return nil, false, nil
	}

	m.hits.Add(1)
	return e.data, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{data: value, expiresAt: m.now().Add(m.ttl)}
	m.sets++
	if m.sets%sweepEvery == 0 {
		m.sweepLocked()
	}
	return nil
}

func (m *Memory) Flush(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Len(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	return len(m.entries), nil
}

func (m *Memory) Stats() Stats {
	return Stats{Hits: m.hits.Load(), Misses: m.misses.Load()}
}

func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}
