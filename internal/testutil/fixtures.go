package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/google/uuid"
)

var testOrderCounter atomic.Int64

func nextOrder() int {
	return int(testOrderCounter.Add(1))
}

// Module options
type ModuleOption func(*domain.Module)

func WithModuleOrder(i int) ModuleOption {
	return func(m *domain.Module) {
		m.OrderIndex = i
	}
}

func NewTestModule(courseID, title string, opts ...ModuleOption) *domain.Module {
	m := &domain.Module{
		ID:         uuid.New().String(),
		CourseID:   courseID,
		Title:      title,
		OrderIndex: nextOrder(),
		CreatedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ContentItem options
type ItemOption func(*domain.ContentItem)

func WithSourceID(id string) ItemOption {
	return func(c *domain.ContentItem) {
		c.SourceID = id
	}
}

func WithJoinID(id string) ItemOption {
	return func(c *domain.ContentItem) {
		c.JoinID = id
	}
}

func WithItemOrder(i int) ItemOption {
	return func(c *domain.ContentItem) {
		c.OrderIndex = i
	}
}

func NewTestItem(m *domain.Module, typ domain.ContentType, opts ...ItemOption) *domain.ContentItem {
	order := nextOrder()
	c := &domain.ContentItem{
		JoinID:     uuid.New().String(),
		SourceID:   uuid.New().String(),
		ModuleID:   m.ID,
		CourseID:   m.CourseID,
		Type:       typ,
		Title:      fmt.Sprintf("%s-%d", typ, order),
		OrderIndex: order,
		CreatedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Requirement options
type RequirementOption func(*domain.Requirement)

func WithPhase(p domain.RequirementPhase) RequirementOption {
	return func(r *domain.Requirement) {
		r.Phase = p
	}
}

func WithOptional() RequirementOption {
	return func(r *domain.Requirement) {
		r.Required = false
	}
}

func NewTestRequirement(courseID string, typ domain.RequirementType, targetID string, opts ...RequirementOption) *domain.Requirement {
	r := &domain.Requirement{
		ID:        uuid.New().String(),
		CourseID:  courseID,
		Phase:     domain.PhasePre,
		Type:      typ,
		TargetID:  targetID,
		Required:  true,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attempt options
type AttemptOption func(*domain.AssessmentAttempt)

// WithResult marks the attempt graded with the given outcome.
func WithResult(passed bool) AttemptOption {
	return func(a *domain.AssessmentAttempt) {
		a.Graded = true
		a.Passed = &passed
	}
}

func WithScore(s float64) AttemptOption {
	return func(a *domain.AssessmentAttempt) {
		a.Score = s
	}
}

func WithAttemptedAt(t time.Time) AttemptOption {
	return func(a *domain.AssessmentAttempt) {
		a.AttemptedAt = t
	}
}

func NewTestAttempt(courseID, userID, assessmentID string, opts ...AttemptOption) *domain.AssessmentAttempt {
	a := &domain.AssessmentAttempt{
		ID:           uuid.New().String(),
		AssessmentID: assessmentID,
		CourseID:     courseID,
		UserID:       userID,
		AttemptedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func NewTestSubmission(kind domain.SubmissionKind, courseID, userID, targetID string) *domain.Submission {
	return &domain.Submission{
		ID:          uuid.New().String(),
		Kind:        kind,
		TargetID:    targetID,
		CourseID:    courseID,
		UserID:      userID,
		SubmittedAt: time.Now().UTC(),
	}
}

// NewTestKey returns a progress key for a single learner in the default client.
func NewTestKey(courseID, contentID string, typ domain.ContentType) domain.ProgressKey {
	return domain.ProgressKey{
		UserID:      "user-1",
		ClientID:    "client-1",
		CourseID:    courseID,
		ContentID:   contentID,
		ContentType: typ,
	}
}

func IntPtr(v int) *int                                  { return &v }
func BoolPtr(v bool) *bool                               { return &v }
func StrPtr(v string) *string                            { return &v }
func StatusPtr(v domain.StatusLabel) *domain.StatusLabel { return &v }
