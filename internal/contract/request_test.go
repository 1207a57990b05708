package contract

import (
	"testing"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewMarkCompleteRequest_SetsDefaults(t *testing.T) {
	req := NewMarkCompleteRequest()

	assert.Equal(t, "completed", req.LessonStatus)
	assert.Equal(t, domain.ContentScorm, req.ContentType)
	assert.Empty(t, req.ModuleID)
	assert.Empty(t, req.PackageID)
}

func TestUpdateProgressRequest_Ref(t *testing.T) {
	req := UpdateProgressRequest{ContentID: "join-1", PackageID: "pkg-1"}
	assert.Equal(t, []string{"join-1", "pkg-1"}, req.Ref().Keys())

	// Prerequisite content is keyed by the prerequisite id.
	req.PrerequisiteID = "pre-1"
	assert.Equal(t, "pre-1", req.Ref().Primary())
}

func TestProgressError_Message(t *testing.T) {
	err := &ProgressError{Code: ProgressErrInvalidRequest, Message: "courseId is required"}
	assert.Equal(t, "INVALID_REQUEST: courseId is required", err.Error())
}
