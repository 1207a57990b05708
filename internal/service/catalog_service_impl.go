package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/db"
	"github.com/alexanderramin/coursegate/internal/importer"
	"github.com/alexanderramin/coursegate/internal/repository"
)

type catalogService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewCatalogService(uow db.UnitOfWork, observers ...UseCaseObserver) CatalogService {
	return &catalogService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *catalogService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	schema, err := importer.LoadCatalogSchema(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if errs := importer.ValidateCatalogSchema(schema); len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, errors.Join(errs...))
	}
	return s.Import(ctx, importer.Convert(schema))
}

// Import persists a converted catalog in a single transaction.
func (s *catalogService) Import(ctx context.Context, c *importer.Catalog) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"course_id": c.CourseID}
	defer observe(ctx, s.observer, "import-catalog", startedAt, fields, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		content := repository.NewSQLiteContentRepo(tx)
		requirements := repository.NewSQLiteRequirementRepo(tx)
		attempts := repository.NewSQLiteAttemptRepo(tx)
		submissions := repository.NewSQLiteSubmissionRepo(tx)

		for _, m := range c.Modules {
			if err := content.CreateModule(ctx, m); err != nil {
				return fmt.Errorf("creating module %q: %w", m.Title, err)
			}
		}
		for _, it := range c.Items {
			if err := content.CreateItem(ctx, it); err != nil {
				return fmt.Errorf("creating item %q: %w", it.Title, err)
			}
		}
		for _, r := range c.Requirements {
			if err := requirements.Create(ctx, r); err != nil {
				return fmt.Errorf("creating requirement %s: %w", r.TargetID, err)
			}
		}
		for _, a := range c.Attempts {
			if err := attempts.Create(ctx, a); err != nil {
				return fmt.Errorf("creating attempt for %s: %w", a.AssessmentID, err)
			}
		}
		for _, sub := range c.Submissions {
			if err := submissions.Create(ctx, sub); err != nil {
				return fmt.Errorf("creating submission for %s: %w", sub.TargetID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &ImportResult{
		CourseID:         c.CourseID,
		ModuleCount:      len(c.Modules),
		ItemCount:        len(c.Items),
		RequirementCount: len(c.Requirements),
		AttemptCount:     len(c.Attempts),
		SubmissionCount:  len(c.Submissions),
	}
	fields["items"] = result.ItemCount
	return result, nil
}
