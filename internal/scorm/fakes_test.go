package scorm

import (
	"context"
	"sync"
	"time"
)

type fakeStore struct {
	mu          sync.Mutex
	loaded      *Snapshot
	loadErr     error
	saveErr     error
	completeErr error
	saves       []Snapshot
	completes   int
	calls       []string
}

func (f *fakeStore) Load(context.Context, Target) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded == nil {
		return nil, f.loadErr
	}
	cp := *f.loaded
	return &cp, f.loadErr
}

func (f *fakeStore) Save(_ context.Context, _ Target, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "save")
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, snap)
	return nil
}

func (f *fakeStore) Complete(context.Context, Target) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "complete")
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completes++
	return nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeStore) lastSave() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[len(f.saves)-1]
}

type fakeCache struct {
	mu    sync.Mutex
	snaps map[Target]Snapshot
}

func newFakeCache() *fakeCache {
	return &fakeCache{snaps: make(map[Target]Snapshot)}
}

func (c *fakeCache) Put(_ context.Context, t Target, snap Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[t] = snap
	return nil
}

func (c *fakeCache) Get(_ context.Context, t Target) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snaps[t]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

var testStart = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

var testTarget = Target{UserID: "u1", ClientID: "c1", CourseID: "course-1", ContentID: "join-1", PackageID: "pkg-1"}

func newTestRegistry(store *fakeStore, opts ...func(*RegistryConfig)) (*Registry, *ManualClock) {
	clock := NewManualClock(testStart)
	cfg := RegistryConfig{Clock: clock}
	for _, o := range opts {
		o(&cfg)
	}
	return NewRegistry(store, cfg), clock
}
