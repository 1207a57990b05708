package domain

import "time"

// ProgressKey identifies one learner's progress on one content item.
type ProgressKey struct {
	UserID      string
	ClientID    string
	CourseID    string
	ContentID   string
	ContentType ContentType
}

type ProgressRecord struct {
	ID string
	ProgressKey

	Percentage int
	Completed  bool
	Status     StatusLabel

	// Counters are high-water marks, not increments.
	ViewCount int
	PlayCount int

	// Payload is opaque type-specific JSON (SCORM raw fields, media position...).
	Payload string

	LastActivityAt time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProgressDelta is a partial update. Nil fields leave the record untouched.
type ProgressDelta struct {
	Percentage *int
	Completed  *bool
	Status     *StatusLabel
	ViewCount  *int
	PlayCount  *int
	Payload    *string
	At         time.Time
}

// NewProgressRecord returns an untouched record for key. LastActivityAt stays
// zero until the first Apply stamps it.
func NewProgressRecord(id string, key ProgressKey, now time.Time) *ProgressRecord {
	return &ProgressRecord{
		ID:          id,
		ProgressKey: key,
		Status:      StatusNotStarted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply merges d into the record. Completion is a ratchet: once Completed is
// set, percentage and status writes are ignored and Completed never reverts.
// Activity time, counters and payload keep advancing. Applying the same delta
// twice yields the same record.
func (r *ProgressRecord) Apply(d ProgressDelta, now time.Time) {
	at := d.At
	if at.IsZero() {
		at = now
	}
	if at.After(r.LastActivityAt) {
		r.LastActivityAt = at
	}
	r.ViewCount = max(r.ViewCount, IntFromPtrWithDefault(r.ViewCount, d.ViewCount))
	r.PlayCount = max(r.PlayCount, IntFromPtrWithDefault(r.PlayCount, d.PlayCount))
	if d.Payload != nil {
		r.Payload = *d.Payload
	}
	r.UpdatedAt = now

	if r.Completed {
		return
	}

	if d.Percentage != nil {
		r.Percentage = ClampPct(*d.Percentage)
	}

	completing := BoolFromPtrWithDefault(false, d.Completed)
	if d.Status != nil && *d.Status == StatusCompleted {
		completing = true
	}
	if completing {
		r.Completed = true
		r.Percentage = 100
		r.Status = StatusCompleted
		r.CompletedAt = &at
		return
	}

	switch {
	case d.Status != nil:
		r.Status = *d.Status
	case r.Percentage > 0 && (r.Status == StatusNotStarted || r.Status == StatusStarted || r.Status == ""):
		r.Status = StatusInProgress
	}
}

// Touched reports whether the learner has interacted with the content at all.
func (r *ProgressRecord) Touched() bool {
	return r.Completed || r.Percentage > 0 || r.ViewCount > 0 || r.PlayCount > 0 ||
		(r.Status != StatusNotStarted && r.Status != "" && r.Status != StatusUnknown)
}
