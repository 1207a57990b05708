package contract

import "github.com/alexanderramin/coursegate/internal/app"

type Identity = app.Identity

type UpdateProgressRequest = app.UpdateProgressRequest

type MarkCompleteRequest = app.MarkCompleteRequest

func NewMarkCompleteRequest() MarkCompleteRequest {
	return app.NewMarkCompleteRequest()
}

type ContentRequest = app.ContentRequest

type ResumeData = app.ResumeData

type CheckProgressResponse = app.CheckProgressResponse

type ProgressErrorCode = app.ProgressErrorCode

const (
	ProgressErrInvalidRequest ProgressErrorCode = app.ProgressErrInvalidRequest
	ProgressErrUnknownContent ProgressErrorCode = app.ProgressErrUnknownContent
)

type ProgressError = app.ProgressError
