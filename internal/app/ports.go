package app

import "context"

type UpdateProgressUseCase interface {
	Update(ctx context.Context, req UpdateProgressRequest) error
}

type MarkCompleteUseCase interface {
	MarkComplete(ctx context.Context, req MarkCompleteRequest) error
}

type ResumeDataUseCase interface {
	ResumeData(ctx context.Context, req ContentRequest) (*ResumeData, error)
}

type CheckProgressUseCase interface {
	CheckProgress(ctx context.Context, req ContentRequest) (*CheckProgressResponse, error)
}

type CourseReportUseCase interface {
	Report(ctx context.Context, req CourseRequest) (*CourseReport, error)
}

type GateUseCase interface {
	Decide(ctx context.Context, req CourseRequest) (*GateResponse, error)
}
