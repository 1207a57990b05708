package app

import (
	"time"

	"github.com/alexanderramin/coursegate/internal/domain"
)

// Identity is the authenticated learner context supplied by the session
// layer. The core assumes it is valid.
type Identity struct {
	UserID   string
	ClientID string
}

type UpdateProgressRequest struct {
	Identity
	CourseID           string
	ContentID          string
	ContentType        domain.ContentType
	SerializedProgress string
	// PrerequisiteID scopes the write to course-level prerequisite content.
	PrerequisiteID string
	PackageID      string
	At             *time.Time
}

// Ref returns the identifiers the update is known by.
func (r UpdateProgressRequest) Ref() domain.ContentRef {
	if r.PrerequisiteID != "" {
		return domain.ContentRef{JoinID: r.PrerequisiteID, SourceID: r.PackageID}
	}
	return domain.ContentRef{JoinID: r.ContentID, SourceID: r.PackageID}
}

type MarkCompleteRequest struct {
	Identity
	CourseID     string
	ContentID    string
	ModuleID     string
	ContentType  domain.ContentType
	LessonStatus string
	PackageID    string
}

func NewMarkCompleteRequest() MarkCompleteRequest {
	return MarkCompleteRequest{
		ContentType:  domain.ContentScorm,
		LessonStatus: "completed",
	}
}

type ContentRequest struct {
	Identity
	CourseID  string
	ContentID string
}

// ResumeData is what a relaunched package needs to continue. A nil
// *ResumeData means there is nothing to resume.
type ResumeData struct {
	Location    string `json:"location"`
	SuspendData string `json:"suspendData"`
	SessionTime string `json:"sessionTime"`
}

type CheckProgressResponse struct {
	LessonStatus string             `json:"lessonStatus"`
	Percentage   int                `json:"percentage"`
	Completed    bool               `json:"completed"`
	Status       domain.StatusLabel `json:"status"`
	MatchedBy    string             `json:"matchedBy,omitempty"`
}

type ProgressErrorCode string

const (
	ProgressErrInvalidRequest ProgressErrorCode = "INVALID_REQUEST"
	ProgressErrUnknownContent ProgressErrorCode = "UNKNOWN_CONTENT"
)

type ProgressError struct {
	Code    ProgressErrorCode
	Message string
}

func (e *ProgressError) Error() string {
	return string(e.Code) + ": " + e.Message
}
