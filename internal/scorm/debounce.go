package scorm

import (
	"sync"
	"time"
)

// Debounce delays per runtime field. Repeated writes inside the window
// coalesce into one commit.
const (
	LocationDebounce    = 800 * time.Millisecond
	SuspendDataDebounce = 1500 * time.Millisecond
	SessionTimeDebounce = 2000 * time.Millisecond
)

// Debouncer runs at most one pending callback per key; scheduling a key
// again replaces its pending callback.
type Debouncer struct {
	clock Clock

	mu      sync.Mutex
	pending map[string]debounced
	gen     uint64
}

type debounced struct {
	timer Timer
	gen   uint64
}

func NewDebouncer(clock Clock) *Debouncer {
	return &Debouncer{clock: clock, pending: make(map[string]debounced)}
}

func (d *Debouncer) Trigger(key string, delay time.Duration, f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	d.gen++
	gen := d.gen
	timer := d.clock.AfterFunc(delay, func() {
		d.mu.Lock()
		cur, ok := d.pending[key]
		if !ok || cur.gen != gen {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		f()
	})
	d.pending[key] = debounced{timer: timer, gen: gen}
}

// Pending reports the number of keys with a scheduled callback.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels every pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
}
