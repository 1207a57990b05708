package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/repository"
)

// Query identifies a learner and the content whose progress is asked for.
type Query struct {
	CourseID string
	UserID   string
	ClientID string
	Type     domain.ContentType
	Ref      domain.ContentRef
}

func (q Query) key(contentID string) domain.ProgressKey {
	return domain.ProgressKey{
		UserID:      q.UserID,
		ClientID:    q.ClientID,
		CourseID:    q.CourseID,
		ContentID:   contentID,
		ContentType: q.Type,
	}
}

// Resolution is the normalized progress of one content item. Tried lists
// the identifiers looked up, in order; MatchedBy is the one that produced a
// non-zero result, or empty when none did.
type Resolution struct {
	Percentage int                `json:"percentage"`
	Completed  bool               `json:"completed"`
	Status     domain.StatusLabel `json:"status"`
	Tried      []string           `json:"tried,omitempty"`
	MatchedBy  string             `json:"matchedBy,omitempty"`
	// Measured keeps a completed resolution's percentage as reported; the
	// percentage is a measured extent such as the share of a video watched.
	Measured bool `json:"-"`
}

func (r Resolution) nonZero() bool {
	return r.Completed || r.Percentage > 0
}

// normalize enforces the shared shape: completed reads 100 unless the
// percentage is Measured, and the status follows the percentage unless a
// resolver set one.
func (r Resolution) normalize() Resolution {
	r.Percentage = domain.ClampPct(r.Percentage)
	if r.Completed {
		if !r.Measured || r.Percentage == 0 {
			r.Percentage = 100
		}
		r.Status = domain.StatusCompleted
		return r
	}
	if r.Status == "" || r.Status == domain.StatusCompleted {
		r.Status = domain.StatusForPercentage(r.Percentage, false)
	}
	return r
}

// Resolver computes progress for one content type under a single
// identifier. The registry handles trying both identifiers.
type Resolver interface {
	Resolve(ctx context.Context, q Query, contentID string) (Resolution, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, q Query, contentID string) (Resolution, error)

func (f ResolverFunc) Resolve(ctx context.Context, q Query, contentID string) (Resolution, error) {
	return f(ctx, q, contentID)
}

// RecordReader reads stored progress records.
type RecordReader interface {
	Get(ctx context.Context, key domain.ProgressKey) (*domain.ProgressRecord, error)
}

// AttemptReader reads the latest assessment attempt, graded or not.
type AttemptReader interface {
	Latest(ctx context.Context, courseID, userID, assessmentID string) (*domain.AssessmentAttempt, error)
	LatestGraded(ctx context.Context, courseID, userID, assessmentID string) (*domain.AssessmentAttempt, error)
}

// SubmissionReader checks whether a submission was recorded.
type SubmissionReader interface {
	Exists(ctx context.Context, kind domain.SubmissionKind, courseID, userID, targetID string) (bool, error)
}

// loadRecord returns nil without error when the learner has no record yet.
func loadRecord(ctx context.Context, store RecordReader, q Query, contentID string) (*domain.ProgressRecord, error) {
	rec, err := store.Get(ctx, q.key(contentID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s progress %s: %w", q.Type, contentID, err)
	}
	return rec, nil
}
