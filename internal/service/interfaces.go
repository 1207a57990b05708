package service

import (
	"context"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/importer"
	"github.com/alexanderramin/coursegate/internal/scorm"
)

// ProgressService records and reads learner progress. It also persists
// SCORM bridge snapshots.
type ProgressService interface {
	app.UpdateProgressUseCase
	app.MarkCompleteUseCase
	app.ResumeDataUseCase
	app.CheckProgressUseCase
	scorm.Store
}

type ReportService interface {
	app.CourseReportUseCase
}

type GateService interface {
	app.GateUseCase
}

// CatalogService seeds the content catalog and learner facts supplied by
// collaborators (content management, assessment engine, forms).
type CatalogService interface {
	Import(ctx context.Context, c *importer.Catalog) (*ImportResult, error)
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
}

// ImportResult holds the outcome of a catalog import.
type ImportResult struct {
	CourseID         string
	ModuleCount      int
	ItemCount        int
	RequirementCount int
	AttemptCount     int
	SubmissionCount  int
}
