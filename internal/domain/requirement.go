package domain

import "time"

type Requirement struct {
	ID        string
	CourseID  string
	Phase     RequirementPhase
	Type      RequirementType
	TargetID  string
	Required  bool
	CreatedAt time.Time
}

type AssessmentAttempt struct {
	ID           string
	AssessmentID string
	CourseID     string
	UserID       string
	Graded       bool
	Passed       *bool
	Score        float64
	AttemptedAt  time.Time
}

// HasResult reports whether the attempt carries a stored pass/fail result.
func (a *AssessmentAttempt) HasResult() bool {
	return a.Graded && a.Passed != nil
}

type Submission struct {
	ID          string
	Kind        SubmissionKind
	TargetID    string
	CourseID    string
	UserID      string
	SubmittedAt time.Time
}
