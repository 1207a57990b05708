package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/progress"
	"github.com/alexanderramin/coursegate/internal/repository"
	"github.com/alexanderramin/coursegate/internal/rollup"
)

type reportService struct {
	content  repository.ContentRepo
	registry *progress.Registry
	observer UseCaseObserver
}

func NewReportService(content repository.ContentRepo, registry *progress.Registry, observers ...UseCaseObserver) ReportService {
	return &reportService{
		content:  content,
		registry: registry,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Report resolves every item of the course and rolls the results up. It is
// recomputed on every call.
func (s *reportService) Report(ctx context.Context, req app.CourseRequest) (report *app.CourseReport, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"course_id": req.CourseID}
	defer observe(ctx, s.observer, "course-report", startedAt, fields, &err)

	if err = validateCourse(req); err != nil {
		return nil, err
	}

	var modules []*moduleItems
	modules, err = s.loadModules(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	moduleProgress := make([]rollup.ModuleProgress, 0, len(modules))
	moduleReports := make([]app.ModuleReport, 0, len(modules))
	for _, m := range modules {
		items := make([]rollup.ItemProgress, 0, len(m.items))
		itemReports := make([]app.ItemReport, 0, len(m.items))
		for _, it := range m.items {
			var res progress.Resolution
			res, err = s.registry.Resolve(ctx, progress.Query{
				CourseID: req.CourseID,
				UserID:   req.UserID,
				ClientID: req.ClientID,
				Type:     it.Type,
				Ref:      it.Ref(),
			})
			if err != nil {
				return nil, err
			}
			items = append(items, rollup.ItemProgress{
				ContentID: it.JoinID,
				Type:      it.Type,
				Percent:   res.Percentage,
				Completed: res.Completed,
			})
			itemReports = append(itemReports, app.ItemReport{
				ContentID:  it.JoinID,
				SourceID:   it.SourceID,
				Title:      it.Title,
				Type:       it.Type,
				Percentage: res.Percentage,
				Completed:  res.Completed,
				Status:     res.Status,
				Tried:      res.Tried,
				MatchedBy:  res.MatchedBy,
			})
		}
		mp := rollup.Module(m.ID, items)
		moduleProgress = append(moduleProgress, mp)
		moduleReports = append(moduleReports, app.ModuleReport{
			ModuleID:   m.ID,
			Title:      m.Title,
			Percentage: mp.Percentage,
			Completed:  mp.Completed,
			Items:      itemReports,
		})
	}

	cp := rollup.Course(req.CourseID, moduleProgress)
	fields["percentage"] = cp.Percentage
	return &app.CourseReport{
		CourseID:    req.CourseID,
		Percentage:  cp.Percentage,
		Completed:   cp.Completed,
		Modules:     moduleReports,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

type moduleItems struct {
	*domain.Module
	items []*domain.ContentItem
}

func (s *reportService) loadModules(ctx context.Context, courseID string) ([]*moduleItems, error) {
	modules, err := s.content.ListModules(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("loading modules: %w", err)
	}
	out := make([]*moduleItems, 0, len(modules))
	for _, m := range modules {
		items, err := s.content.ListItems(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("loading items of module %s: %w", m.ID, err)
		}
		out = append(out, &moduleItems{Module: m, items: items})
	}
	return out, nil
}

func validateCourse(req app.CourseRequest) error {
	switch {
	case req.UserID == "" || req.ClientID == "":
		return &app.ProgressError{Code: app.ProgressErrInvalidRequest, Message: "user and client are required"}
	case req.CourseID == "":
		return &app.ProgressError{Code: app.ProgressErrInvalidRequest, Message: "courseId is required"}
	}
	return nil
}
