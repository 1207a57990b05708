package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/repository"
	"github.com/alexanderramin/coursegate/internal/scorm"
)

// MediaResolver handles video and audio: the stored watched percentage as
// is, completed at the threshold or on an explicit completion.
type MediaResolver struct {
	Store     RecordReader
	Threshold int
}

func (m *MediaResolver) Resolve(ctx context.Context, q Query, contentID string) (Resolution, error) {
	rec, err := loadRecord(ctx, m.Store, q, contentID)
	if err != nil || rec == nil {
		return Resolution{}, err
	}
	return Resolution{
		Percentage: rec.Percentage,
		Completed:  rec.Completed || rec.Percentage >= m.Threshold,
		Status:     rec.Status,
		Measured:   true,
	}, nil
}

// ViewResolver handles images and external links, which have no measurable
// extent: viewed reads 50 until explicitly completed.
type ViewResolver struct {
	Store RecordReader
}

func (v *ViewResolver) Resolve(ctx context.Context, q Query, contentID string) (Resolution, error) {
	rec, err := loadRecord(ctx, v.Store, q, contentID)
	if err != nil || rec == nil {
		return Resolution{}, err
	}
	switch {
	case rec.Completed:
		return Resolution{Completed: true}, nil
	case rec.Touched():
		return Resolution{Percentage: 50, Status: domain.StatusInProgress}, nil
	default:
		return Resolution{}, nil
	}
}

// DocumentResolver reports the viewed percentage, promoting it to complete
// once it reaches PromoteAt.
type DocumentResolver struct {
	Store     RecordReader
	PromoteAt int
}

func (d *DocumentResolver) Resolve(ctx context.Context, q Query, contentID string) (Resolution, error) {
	rec, err := loadRecord(ctx, d.Store, q, contentID)
	if err != nil || rec == nil {
		return Resolution{}, err
	}
	if rec.Completed || rec.Percentage >= d.PromoteAt {
		return Resolution{Completed: true}, nil
	}
	return Resolution{Percentage: rec.Percentage, Status: rec.Status}, nil
}

// AssessmentResolver judges the most recent graded attempt: passed reads
// 100, failed reads 50. Without a graded attempt any attempt reads 50.
type AssessmentResolver struct {
	Attempts AttemptReader
}

func (a *AssessmentResolver) Resolve(ctx context.Context, q Query, contentID string) (Resolution, error) {
	graded, err := a.Attempts.LatestGraded(ctx, q.CourseID, q.UserID, contentID)
	switch {
	case err == nil:
		if *graded.Passed {
			return Resolution{Completed: true}, nil
		}
		return Resolution{Percentage: 50, Status: domain.StatusInProgress}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return Resolution{}, fmt.Errorf("loading graded attempt: %w", err)
	}

	_, err = a.Attempts.Latest(ctx, q.CourseID, q.UserID, contentID)
	if errors.Is(err, repository.ErrNotFound) {
		return Resolution{}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("loading latest attempt: %w", err)
	}
	return Resolution{Percentage: 50, Status: domain.StatusInProgress}, nil
}

// AssignmentResolver is all or nothing on a recorded submission.
type AssignmentResolver struct {
	Submissions SubmissionReader
}

func (a *AssignmentResolver) Resolve(ctx context.Context, q Query, contentID string) (Resolution, error) {
	ok, err := a.Submissions.Exists(ctx, domain.SubmissionAssignment, q.CourseID, q.UserID, contentID)
	if err != nil {
		return Resolution{}, fmt.Errorf("checking submission: %w", err)
	}
	if ok {
		return Resolution{Completed: true}, nil
	}
	return Resolution{}, nil
}

// ScormResolver reads the record a bridge session flushed: completed, else
// the package-reported percent, else the stored percentage, else an
// estimate from the raw suspend data.
type ScormResolver struct {
	Store RecordReader
}

func (s *ScormResolver) Resolve(ctx context.Context, q Query, contentID string) (Resolution, error) {
	rec, err := loadRecord(ctx, s.Store, q, contentID)
	if err != nil || rec == nil {
		return Resolution{}, err
	}
	if rec.Completed {
		return Resolution{Completed: true}, nil
	}

	snap, err := scorm.ParseSnapshot(rec.Payload)
	if err != nil {
		// Unreadable payloads fall back to the stored percentage.
		snap = &scorm.Snapshot{}
	}
	var pct int
	switch {
	case snap.ProgressPercent != nil:
		pct = *snap.ProgressPercent
	case rec.Percentage > 0:
		pct = rec.Percentage
	default:
		pct = scorm.EstimateProgress(snap.SuspendData, snap.Location)
	}
	return Resolution{Percentage: pct, Status: rec.Status}, nil
}
