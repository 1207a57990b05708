package scorm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alexanderramin/coursegate/internal/domain"
)

// Target identifies the learner and content a session reports on.
type Target struct {
	UserID    string `json:"userId"`
	ClientID  string `json:"clientId"`
	CourseID  string `json:"courseId"`
	ContentID string `json:"contentId"`
	PackageID string `json:"packageId,omitempty"`
	ModuleID  string `json:"moduleId,omitempty"`
}

// Ref returns the dual identifier: the module content id, then the package id.
func (t Target) Ref() domain.ContentRef {
	return domain.ContentRef{JoinID: t.ContentID, SourceID: t.PackageID}
}

// Cache is the session's write-through view of the runtime fields that
// matter for progress.
type Cache struct {
	Location        string
	SuspendData     string
	SessionTime     time.Duration
	ProgressPercent *int
	LessonStatus    string
	Score           *float64
	LastUpdate      time.Time
}

// Snapshot is the persisted form of a session's cache. It is stored as the
// opaque payload of a scorm progress record and travels as the serialized
// progress of the update endpoint.
type Snapshot struct {
	Location        string    `json:"location"`
	SuspendData     string    `json:"suspendData"`
	SessionTime     string    `json:"sessionTime"`
	TotalTime       string    `json:"totalTime"`
	SessionSeconds  int64     `json:"sessionSeconds"`
	ProgressPercent *int      `json:"progressPercent,omitempty"`
	Percentage      int       `json:"percentage"`
	LessonStatus    string    `json:"lessonStatus,omitempty"`
	Score           *float64  `json:"score,omitempty"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasResumePoint reports whether the snapshot holds a position worth
// offering to resume from.
func (s *Snapshot) HasResumePoint() bool {
	return s != nil && (s.Location != "" || s.SuspendData != "")
}

// Progress returns the reported percentage when the package gave one, and
// otherwise the suspend-data estimate.
func (s *Snapshot) Progress() int {
	if s.ProgressPercent != nil {
		return domain.ClampPct(*s.ProgressPercent)
	}
	return EstimateProgress(s.SuspendData, s.Location)
}

// SessionDuration recovers the accumulated time from either stored form.
func (s Snapshot) SessionDuration() time.Duration {
	if s.SessionSeconds > 0 {
		return time.Duration(s.SessionSeconds) * time.Second
	}
	for _, raw := range []string{s.TotalTime, s.SessionTime} {
		if d, err := ParseDuration(raw); err == nil && raw != "" {
			return d
		}
	}
	return 0
}

// ParseSnapshot decodes a stored payload. Empty input yields an empty
// snapshot; malformed input is an error the caller may treat as absent.
func ParseSnapshot(raw string) (*Snapshot, error) {
	var snap Snapshot
	if raw == "" {
		return &snap, nil
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s Snapshot) Encode() string {
	b, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Store persists session snapshots. Save and Complete are separate writes so
// completion can be gated on a successful snapshot save.
type Store interface {
	// Load returns the last persisted snapshot, or nil when none exists.
	Load(ctx context.Context, t Target) (*Snapshot, error)
	Save(ctx context.Context, t Target, snap Snapshot) error
	Complete(ctx context.Context, t Target) error
}

// SnapshotCache holds the latest unflushed snapshot per target so a new
// launch can pick up state a lost session never committed.
type SnapshotCache interface {
	Put(ctx context.Context, t Target, snap Snapshot) error
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, t Target) (*Snapshot, error)
}
