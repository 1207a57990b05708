package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/gate"
	"github.com/alexanderramin/coursegate/internal/repository"
)

type gateService struct {
	reports      app.CourseReportUseCase
	requirements repository.RequirementRepo
	checker      *gate.Checker
	observer     UseCaseObserver
}

func NewGateService(
	reports app.CourseReportUseCase,
	requirements repository.RequirementRepo,
	checker *gate.Checker,
	observers ...UseCaseObserver,
) GateService {
	return &gateService{
		reports:      reports,
		requirements: requirements,
		checker:      checker,
		observer:     useCaseObserverOrNoop(observers),
	}
}

func (s *gateService) Decide(ctx context.Context, req app.CourseRequest) (resp *app.GateResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"course_id": req.CourseID}
	defer observe(ctx, s.observer, "gate-decision", startedAt, fields, &err)

	var report *app.CourseReport
	report, err = s.reports.Report(ctx, req)
	if err != nil {
		return nil, err
	}

	var prereqs, postreqs []*domain.Requirement
	prereqs, err = s.requirements.ListByCourse(ctx, req.CourseID, domain.PhasePre)
	if err != nil {
		return nil, fmt.Errorf("loading prerequisites: %w", err)
	}
	postreqs, err = s.requirements.ListByCourse(ctx, req.CourseID, domain.PhasePost)
	if err != nil {
		return nil, fmt.Errorf("loading post-requisites: %w", err)
	}

	var decision gate.Decision
	decision, err = s.checker.Decide(ctx, req.CourseID, req.UserID, prereqs, report.Completed)
	if err != nil {
		return nil, err
	}
	fields["prerequisites_satisfied"] = decision.PrerequisitesSatisfied
	fields["postrequisites_unlocked"] = decision.PostrequisitesUnlocked

	targets := make([]string, 0, len(postreqs))
	for _, r := range postreqs {
		targets = append(targets, r.TargetID)
	}
	return &app.GateResponse{
		Decision:         decision,
		CoursePercentage: report.Percentage,
		Postrequisites:   targets,
	}, nil
}
