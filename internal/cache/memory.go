package cache

import (
	"context"
	"sync"
	"time"

	"github.com/alexanderramin/coursegate/internal/scorm"
)

// MemorySnapshotCache is the single-process fallback when no Redis is
// configured. Entries expire after the TTL.
type MemorySnapshotCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	snap      scorm.Snapshot
	expiresAt time.Time
}

func NewMemorySnapshotCache(ttl time.Duration) *MemorySnapshotCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemorySnapshotCache{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (c *MemorySnapshotCache) Put(_ context.Context, t scorm.Target, snap scorm.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key(t)] = memoryEntry{snap: snap, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *MemorySnapshotCache) Get(_ context.Context, t scorm.Target) (*scorm.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := Key(t)
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, nil
	}
	snap := e.snap
	return &snap, nil
}
