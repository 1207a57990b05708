// Package gate decides whether prerequisite and post-requisite content is
// unlocked for a learner.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/repository"
)

// AttemptReader reads the most recent graded assessment attempt.
type AttemptReader interface {
	LatestGraded(ctx context.Context, courseID, userID, assessmentID string) (*domain.AssessmentAttempt, error)
}

// SubmissionReader checks whether a submission was recorded.
type SubmissionReader interface {
	Exists(ctx context.Context, kind domain.SubmissionKind, courseID, userID, targetID string) (bool, error)
}

// Unmet is a requirement that blocked a decision.
type Unmet struct {
	RequirementID string                 `json:"requirementId"`
	Type          domain.RequirementType `json:"type"`
	TargetID      string                 `json:"targetId"`
}

// Decision is the outcome for one learner and course.
type Decision struct {
	PrerequisitesSatisfied bool    `json:"prerequisitesSatisfied"`
	PostrequisitesUnlocked bool    `json:"postrequisitesUnlocked"`
	CourseCompleted        bool    `json:"courseCompleted"`
	Unmet                  []Unmet `json:"unmet"`
}

type Checker struct {
	attempts    AttemptReader
	submissions SubmissionReader
}

func NewChecker(attempts AttemptReader, submissions SubmissionReader) *Checker {
	return &Checker{attempts: attempts, submissions: submissions}
}

var submissionKinds = map[domain.RequirementType]domain.SubmissionKind{
	domain.RequirementSurvey:     domain.SubmissionSurvey,
	domain.RequirementAssignment: domain.SubmissionAssignment,
	domain.RequirementFeedback:   domain.SubmissionFeedback,
}

// Satisfied reports whether the learner met r. Assessments need a passed
// latest graded attempt; surveys, assignments and feedback need a
// submission. Any other type is satisfied, and so is a requirement that is
// not required.
func (c *Checker) Satisfied(ctx context.Context, courseID, userID string, r *domain.Requirement) (bool, error) {
	if !r.Required {
		return true, nil
	}
	if r.Type == domain.RequirementAssessment {
		att, err := c.attempts.LatestGraded(ctx, courseID, userID, r.TargetID)
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("checking assessment %s: %w", r.TargetID, err)
		}
		return att.HasResult() && *att.Passed, nil
	}
	kind, ok := submissionKinds[r.Type]
	if !ok {
		return true, nil
	}
	exists, err := c.submissions.Exists(ctx, kind, courseID, userID, r.TargetID)
	if err != nil {
		return false, fmt.Errorf("checking %s %s: %w", r.Type, r.TargetID, err)
	}
	return exists, nil
}

// PrerequisitesSatisfied is true when every requirement is satisfied, and
// vacuously true for none. It also returns the unmet requirements.
func (c *Checker) PrerequisitesSatisfied(ctx context.Context, courseID, userID string, reqs []*domain.Requirement) (bool, []Unmet, error) {
	unmet := []Unmet{}
	for _, r := range reqs {
		ok, err := c.Satisfied(ctx, courseID, userID, r)
		if err != nil {
			return false, nil, err
		}
		if !ok {
			unmet = append(unmet, Unmet{RequirementID: r.ID, Type: r.Type, TargetID: r.TargetID})
		}
	}
	return len(unmet) == 0, unmet, nil
}

// PostrequisitesUnlocked requires the prerequisites and a completed course.
func PostrequisitesUnlocked(prerequisitesSatisfied, courseCompleted bool) bool {
	return prerequisitesSatisfied && courseCompleted
}

// Decide evaluates prereqs and combines them with course completion.
func (c *Checker) Decide(ctx context.Context, courseID, userID string, prereqs []*domain.Requirement, courseCompleted bool) (Decision, error) {
	ok, unmet, err := c.PrerequisitesSatisfied(ctx, courseID, userID, prereqs)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		PrerequisitesSatisfied: ok,
		PostrequisitesUnlocked: PostrequisitesUnlocked(ok, courseCompleted),
		CourseCompleted:        courseCompleted,
		Unmet:                  unmet,
	}, nil
}
