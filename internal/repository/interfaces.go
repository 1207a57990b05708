package repository

import (
	"context"

	"github.com/alexanderramin/coursegate/internal/domain"
)

// ProgressRepo is the progress record store. Upsert is a read-apply-write;
// run it inside a db.UnitOfWork when concurrent writers are possible.
type ProgressRepo interface {
	Get(ctx context.Context, key domain.ProgressKey) (*domain.ProgressRecord, error)
	Upsert(ctx context.Context, key domain.ProgressKey, delta domain.ProgressDelta) (*domain.ProgressRecord, error)
	ListByCourse(ctx context.Context, userID, clientID, courseID string) ([]*domain.ProgressRecord, error)
}

// ContentRepo exposes the module/content catalog supplied by the content
// management collaborator.
type ContentRepo interface {
	CreateModule(ctx context.Context, m *domain.Module) error
	CreateItem(ctx context.Context, c *domain.ContentItem) error
	ListModules(ctx context.Context, courseID string) ([]*domain.Module, error)
	ListItems(ctx context.Context, moduleID string) ([]*domain.ContentItem, error)
	// FindItem matches id against the join id first, then the source id.
	FindItem(ctx context.Context, courseID, id string) (*domain.ContentItem, error)
}

type RequirementRepo interface {
	Create(ctx context.Context, r *domain.Requirement) error
	ListByCourse(ctx context.Context, courseID string, phase domain.RequirementPhase) ([]*domain.Requirement, error)
}

type AttemptRepo interface {
	Create(ctx context.Context, a *domain.AssessmentAttempt) error
	Latest(ctx context.Context, courseID, userID, assessmentID string) (*domain.AssessmentAttempt, error)
	LatestGraded(ctx context.Context, courseID, userID, assessmentID string) (*domain.AssessmentAttempt, error)
}

type SubmissionRepo interface {
	Create(ctx context.Context, s *domain.Submission) error
	Exists(ctx context.Context, kind domain.SubmissionKind, courseID, userID, targetID string) (bool, error)
}
