package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/db"
	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/logger"
	"github.com/alexanderramin/coursegate/internal/progress"
	"github.com/alexanderramin/coursegate/internal/repository"
	"github.com/alexanderramin/coursegate/internal/scorm"
)

type progressService struct {
	uow      db.UnitOfWork
	records  repository.ProgressRepo
	content  repository.ContentRepo
	registry *progress.Registry
	log      *logger.Logger
	observer UseCaseObserver
	now      func() time.Time
}

func NewProgressService(
	uow db.UnitOfWork,
	records repository.ProgressRepo,
	content repository.ContentRepo,
	registry *progress.Registry,
	log *logger.Logger,
	observers ...UseCaseObserver,
) ProgressService {
	if log == nil {
		log = logger.NewNop()
	}
	return &progressService{
		uow:      uow,
		records:  records,
		content:  content,
		registry: registry,
		log:      log,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// progressReport is the serialized progress of every non-SCORM player.
type progressReport struct {
	Percentage *float64 `json:"percentage"`
	Completed  *bool    `json:"completed"`
	Viewed     bool     `json:"viewed"`
	ViewCount  *int     `json:"viewCount"`
	PlayCount  *int     `json:"playCount"`
}

func (s *progressService) Update(ctx context.Context, req app.UpdateProgressRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"course_id":    req.CourseID,
		"content_id":   req.ContentID,
		"content_type": string(req.ContentType),
	}
	defer observe(ctx, s.observer, "update-progress", startedAt, fields, &err)

	if err = validateContent(req.Identity, req.CourseID, req.ContentID); err != nil {
		return err
	}
	if !domain.ValidContentTypes[req.ContentType] {
		err = &app.ProgressError{Code: app.ProgressErrUnknownContent, Message: fmt.Sprintf("unknown content type %q", req.ContentType)}
		return err
	}

	key := domain.ProgressKey{
		UserID:      req.UserID,
		ClientID:    req.ClientID,
		CourseID:    req.CourseID,
		ContentID:   req.Ref().Primary(),
		ContentType: req.ContentType,
	}
	if req.PrerequisiteID != "" {
		fields["prerequisite_id"] = req.PrerequisiteID
	}
	err = s.upsert(ctx, key, s.deltaFor(req))
	return err
}

// deltaFor turns serialized progress into a delta. Unreadable input fails
// open: the update still records activity but changes no progress.
func (s *progressService) deltaFor(req app.UpdateProgressRequest) domain.ProgressDelta {
	delta := domain.ProgressDelta{At: s.now()}
	if req.At != nil {
		delta.At = *req.At
	}
	raw := strings.TrimSpace(req.SerializedProgress)

	if req.ContentType == domain.ContentScorm {
		snap, err := scorm.ParseSnapshot(raw)
		if err != nil {
			s.log.Warn("unreadable scorm progress", "content_id", req.ContentID, "error", err)
			return delta
		}
		pct := snap.Percentage
		if pct == 0 {
			pct = snap.Progress()
		}
		payload := snap.Encode()
		delta.Percentage = &pct
		delta.Payload = &payload
		if snap.Completed {
			delta.Completed = &snap.Completed
		}
		if req.At == nil && !snap.UpdatedAt.IsZero() {
			delta.At = snap.UpdatedAt
		}
		return delta
	}

	if raw == "" {
		return delta
	}
	var rep progressReport
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		s.log.Warn("unreadable progress report", "content_id", req.ContentID, "content_type", string(req.ContentType), "error", err)
		return delta
	}
	if rep.Percentage != nil {
		pct := domain.ClampPct(domain.RoundHalfUp(*rep.Percentage))
		delta.Percentage = &pct
	}
	delta.Completed = rep.Completed
	delta.PlayCount = rep.PlayCount
	delta.ViewCount = rep.ViewCount
	if delta.ViewCount == nil && rep.Viewed {
		one := 1
		delta.ViewCount = &one
	}
	if delta.Percentage == nil && delta.ViewCount != nil && *delta.ViewCount > 0 {
		started := domain.StatusStarted
		delta.Status = &started
	}
	delta.Payload = &raw
	return delta
}

func (s *progressService) MarkComplete(ctx context.Context, req app.MarkCompleteRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"course_id": req.CourseID, "content_id": req.ContentID}
	defer observe(ctx, s.observer, "mark-complete", startedAt, fields, &err)

	if err = validateContent(req.Identity, req.CourseID, req.ContentID); err != nil {
		return err
	}
	status := strings.ToLower(strings.TrimSpace(req.LessonStatus))
	if status == "" {
		status = "completed"
	}
	if status != "completed" && status != "passed" {
		err = &app.ProgressError{Code: app.ProgressErrInvalidRequest, Message: fmt.Sprintf("lesson status %q does not complete content", req.LessonStatus)}
		return err
	}
	typ := req.ContentType
	if typ == "" {
		typ = domain.ContentScorm
	}
	if req.ModuleID != "" {
		fields["module_id"] = req.ModuleID
	}

	ref := domain.ContentRef{JoinID: req.ContentID, SourceID: req.PackageID}
	key := domain.ProgressKey{
		UserID:      req.UserID,
		ClientID:    req.ClientID,
		CourseID:    req.CourseID,
		ContentID:   ref.Primary(),
		ContentType: typ,
	}
	done := true
	completed := domain.StatusCompleted
	err = s.upsert(ctx, key, domain.ProgressDelta{Completed: &done, Status: &completed, At: s.now()})
	return err
}

func (s *progressService) ResumeData(ctx context.Context, req app.ContentRequest) (*app.ResumeData, error) {
	if err := validateContent(req.Identity, req.CourseID, req.ContentID); err != nil {
		return nil, err
	}
	ref, typ, err := s.lookup(ctx, req.CourseID, req.ContentID)
	if err != nil {
		return nil, err
	}

	for _, id := range ref.Keys() {
		rec, err := s.records.Get(ctx, progressKey(req.Identity, req.CourseID, id, typ))
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading resume data: %w", err)
		}
		snap, err := scorm.ParseSnapshot(rec.Payload)
		if err != nil {
			s.log.Debug("unreadable resume payload", "content_id", id, "error", err)
			continue
		}
		spent := snap.SessionDuration()
		if !snap.HasResumePoint() && spent == 0 {
			continue
		}
		return &app.ResumeData{
			Location:    snap.Location,
			SuspendData: snap.SuspendData,
			SessionTime: scorm.FormatISO(spent),
		}, nil
	}
	return nil, nil
}

func (s *progressService) CheckProgress(ctx context.Context, req app.ContentRequest) (*app.CheckProgressResponse, error) {
	if err := validateContent(req.Identity, req.CourseID, req.ContentID); err != nil {
		return nil, err
	}
	ref, typ, err := s.lookup(ctx, req.CourseID, req.ContentID)
	if err != nil {
		return nil, err
	}
	res, err := s.registry.Resolve(ctx, progress.Query{
		CourseID: req.CourseID,
		UserID:   req.UserID,
		ClientID: req.ClientID,
		Type:     typ,
		Ref:      ref,
	})
	if err != nil {
		return nil, err
	}
	return &app.CheckProgressResponse{
		LessonStatus: lessonStatus(res),
		Percentage:   res.Percentage,
		Completed:    res.Completed,
		Status:       res.Status,
		MatchedBy:    res.MatchedBy,
	}, nil
}

func lessonStatus(res progress.Resolution) string {
	switch {
	case res.Completed:
		return "completed"
	case res.Percentage > 0 || res.Status == domain.StatusInProgress || res.Status == domain.StatusStarted:
		return "incomplete"
	default:
		return "not attempted"
	}
}

// lookup finds the catalog entry for id so both identifiers can be tried.
// Content missing from the catalog is treated as a SCORM package known by
// id alone.
func (s *progressService) lookup(ctx context.Context, courseID, id string) (domain.ContentRef, domain.ContentType, error) {
	item, err := s.content.FindItem(ctx, courseID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ContentRef{JoinID: id}, domain.ContentScorm, nil
	}
	if err != nil {
		return domain.ContentRef{}, "", fmt.Errorf("looking up content %s: %w", id, err)
	}
	return item.Ref(), item.Type, nil
}

// Load returns the persisted snapshot for a bridge session, trying the
// module content id first and then the package id.
func (s *progressService) Load(ctx context.Context, t scorm.Target) (*scorm.Snapshot, error) {
	id := app.Identity{UserID: t.UserID, ClientID: t.ClientID}
	for _, contentID := range t.Ref().Keys() {
		rec, err := s.records.Get(ctx, progressKey(id, t.CourseID, contentID, domain.ContentScorm))
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading scorm snapshot: %w", err)
		}
		snap, err := scorm.ParseSnapshot(rec.Payload)
		if err != nil {
			s.log.Warn("discarding unreadable scorm payload", "content_id", contentID, "error", err)
			snap = &scorm.Snapshot{}
		}
		snap.Completed = snap.Completed || rec.Completed
		if snap.Percentage == 0 {
			snap.Percentage = rec.Percentage
		}
		if snap.UpdatedAt.IsZero() {
			snap.UpdatedAt = rec.LastActivityAt
		}
		return snap, nil
	}
	return nil, nil
}

func (s *progressService) Save(ctx context.Context, t scorm.Target, snap scorm.Snapshot) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"course_id": t.CourseID, "content_id": t.ContentID, "percentage": snap.Percentage}
	defer observe(ctx, s.observer, "scorm-save", startedAt, fields, &err)

	pct := snap.Percentage
	payload := snap.Encode()
	at := snap.UpdatedAt
	if at.IsZero() {
		at = s.now()
	}
	err = s.upsert(ctx, scormKey(t), domain.ProgressDelta{Percentage: &pct, Payload: &payload, At: at})
	return err
}

func (s *progressService) Complete(ctx context.Context, t scorm.Target) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"course_id": t.CourseID, "content_id": t.ContentID}
	defer observe(ctx, s.observer, "scorm-complete", startedAt, fields, &err)

	done := true
	err = s.upsert(ctx, scormKey(t), domain.ProgressDelta{Completed: &done, At: s.now()})
	return err
}

func (s *progressService) upsert(ctx context.Context, key domain.ProgressKey, delta domain.ProgressDelta) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRecords := repository.NewSQLiteProgressRepo(tx)
		if _, err := txRecords.Upsert(ctx, key, delta); err != nil {
			return fmt.Errorf("saving %s progress: %w", key.ContentType, err)
		}
		return nil
	})
}

func scormKey(t scorm.Target) domain.ProgressKey {
	return domain.ProgressKey{
		UserID:      t.UserID,
		ClientID:    t.ClientID,
		CourseID:    t.CourseID,
		ContentID:   t.Ref().Primary(),
		ContentType: domain.ContentScorm,
	}
}

func progressKey(id app.Identity, courseID, contentID string, typ domain.ContentType) domain.ProgressKey {
	return domain.ProgressKey{
		UserID:      id.UserID,
		ClientID:    id.ClientID,
		CourseID:    courseID,
		ContentID:   contentID,
		ContentType: typ,
	}
}

func validateContent(id app.Identity, courseID, contentID string) error {
	switch {
	case id.UserID == "" || id.ClientID == "":
		return &app.ProgressError{Code: app.ProgressErrInvalidRequest, Message: "user and client are required"}
	case courseID == "":
		return &app.ProgressError{Code: app.ProgressErrInvalidRequest, Message: "courseId is required"}
	case contentID == "":
		return &app.ProgressError{Code: app.ProgressErrInvalidRequest, Message: "contentId is required"}
	}
	return nil
}
