package importer

import (
	"time"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/google/uuid"
)

// Catalog is a converted import ready for persistence.
type Catalog struct {
	CourseID     string
	Modules      []*domain.Module
	Items        []*domain.ContentItem
	Requirements []*domain.Requirement
	Attempts     []*domain.AssessmentAttempt
	Submissions  []*domain.Submission
}

// Convert transforms a validated CatalogSchema into domain objects. Call
// ValidateCatalogSchema first; Convert assumes the schema is valid.
func Convert(schema *CatalogSchema) *Catalog {
	now := time.Now().UTC()
	courseID := schema.Course.ID
	c := &Catalog{CourseID: courseID}

	refMap := make(map[string]string) // ref -> module id
	for _, m := range schema.Modules {
		id := m.ID
		if id == "" {
			id = uuid.New().String()
		}
		refMap[m.Ref] = id
		c.Modules = append(c.Modules, &domain.Module{
			ID:         id,
			CourseID:   courseID,
			Title:      m.Title,
			OrderIndex: m.Order,
			CreatedAt:  now,
		})
	}

	for _, it := range schema.Items {
		joinID := it.JoinID
		if joinID == "" {
			joinID = uuid.New().String()
		}
		c.Items = append(c.Items, &domain.ContentItem{
			JoinID:     joinID,
			SourceID:   it.SourceID,
			ModuleID:   refMap[it.ModuleRef],
			CourseID:   courseID,
			Type:       domain.ContentType(it.Type),
			Title:      it.Title,
			OrderIndex: it.Order,
			CreatedAt:  now,
		})
	}

	for _, r := range schema.Requirements {
		required := true
		if r.Required != nil {
			required = *r.Required
		}
		c.Requirements = append(c.Requirements, &domain.Requirement{
			ID:        uuid.New().String(),
			CourseID:  courseID,
			Phase:     domain.RequirementPhase(r.Phase),
			Type:      domain.RequirementType(r.Type),
			TargetID:  r.TargetID,
			Required:  required,
			CreatedAt: now,
		})
	}

	for _, a := range schema.Attempts {
		att := &domain.AssessmentAttempt{
			ID:           uuid.New().String(),
			AssessmentID: a.AssessmentID,
			CourseID:     courseID,
			UserID:       a.UserID,
			Graded:       a.Passed != nil,
			Passed:       a.Passed,
			AttemptedAt:  parseTimestamp(a.AttemptedAt, now),
		}
		if a.Score != nil {
			att.Score = *a.Score
		}
		c.Attempts = append(c.Attempts, att)
	}

	for _, s := range schema.Submissions {
		c.Submissions = append(c.Submissions, &domain.Submission{
			ID:          uuid.New().String(),
			Kind:        domain.SubmissionKind(s.Kind),
			TargetID:    s.TargetID,
			CourseID:    courseID,
			UserID:      s.UserID,
			SubmittedAt: parseTimestamp(s.SubmittedAt, now),
		})
	}

	return c
}

func parseTimestamp(v string, fallback time.Time) time.Time {
	if v == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return fallback
	}
	return t.UTC()
}
