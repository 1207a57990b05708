package domain

import "time"

// ContentRef carries both identifiers a content item is known by: the
// module placement (join) id and the reusable source package id.
type ContentRef struct {
	JoinID   string
	SourceID string
}

// Keys returns the lookup order: join id first, then source id.
// Empty and duplicate ids are skipped.
func (r ContentRef) Keys() []string {
	keys := make([]string, 0, 2)
	if r.JoinID != "" {
		keys = append(keys, r.JoinID)
	}
	if r.SourceID != "" && r.SourceID != r.JoinID {
		keys = append(keys, r.SourceID)
	}
	return keys
}

// Primary returns the id used when a single key is needed for writes.
func (r ContentRef) Primary() string {
	return CoalesceStr(r.JoinID, r.SourceID)
}

type Module struct {
	ID         string
	CourseID   string
	Title      string
	OrderIndex int
	CreatedAt  time.Time
}

type ContentItem struct {
	JoinID     string
	SourceID   string
	ModuleID   string
	CourseID   string
	Type       ContentType
	Title      string
	OrderIndex int
	CreatedAt  time.Time
}

// Ref returns the dual identifier of the item.
func (c *ContentItem) Ref() ContentRef {
	return ContentRef{JoinID: c.JoinID, SourceID: c.SourceID}
}
