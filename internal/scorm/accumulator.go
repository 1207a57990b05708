package scorm

import "time"

const (
	// incrementalCap is the largest report always treated as a delta.
	incrementalCap = 10 * time.Second
	// jumpSlack is how far a report may exceed elapsed wall time.
	jumpSlack = 60 * time.Second
)

// Accumulator sums the session_time deltas a package reports. Packages
// disagree on whether session_time is a delta or a running total, so no
// single report is trusted as the total.
type Accumulator struct {
	total time.Duration
	last  time.Time
}

// NewAccumulator starts an accumulator at base (time already spent in
// earlier launches) with its wall clock anchored at start.
func NewAccumulator(base time.Duration, start time.Time) *Accumulator {
	if base < 0 {
		base = 0
	}
	return &Accumulator{total: base, last: start}
}

// Add folds a reported duration into the total and reports whether it was
// accepted. Zero resets are ignored. Reports up to 10s are always added.
// Anything larger than the wall time since the last accepted report plus
// 60s is an anomalous jump and is dropped.
func (a *Accumulator) Add(reported time.Duration, now time.Time) bool {
	if reported <= 0 {
		return false
	}
	if reported > incrementalCap {
		elapsed := now.Sub(a.last)
		if elapsed < 0 {
			elapsed = 0
		}
		if reported > elapsed+jumpSlack {
			return false
		}
	}
	a.total += reported
	a.last = now
	return true
}

func (a *Accumulator) Total() time.Duration {
	return a.total
}

// Reset zeroes the total. Only the host calls this; package resets never do.
func (a *Accumulator) Reset(now time.Time) {
	a.total = 0
	a.last = now
}
