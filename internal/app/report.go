package app

import (
	"time"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/gate"
)

type CourseRequest struct {
	Identity
	CourseID string
}

// ItemReport is one content item's resolved progress and the identifiers
// that were tried to find it.
type ItemReport struct {
	ContentID  string             `json:"contentId"`
	SourceID   string             `json:"sourceId,omitempty"`
	Title      string             `json:"title"`
	Type       domain.ContentType `json:"type"`
	Percentage int                `json:"percentage"`
	Completed  bool               `json:"completed"`
	Status     domain.StatusLabel `json:"status"`
	Tried      []string           `json:"tried,omitempty"`
	MatchedBy  string             `json:"matchedBy,omitempty"`
}

type ModuleReport struct {
	ModuleID   string       `json:"moduleId"`
	Title      string       `json:"title"`
	Percentage int          `json:"percentage"`
	Completed  bool         `json:"completed"`
	Items      []ItemReport `json:"items"`
}

type CourseReport struct {
	CourseID    string         `json:"courseId"`
	Percentage  int            `json:"percentage"`
	Completed   bool           `json:"completed"`
	Modules     []ModuleReport `json:"modules"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

type GateResponse struct {
	gate.Decision
	CoursePercentage int `json:"coursePercentage"`
	// Postrequisites are the post-phase requirements the decision unlocks.
	Postrequisites []string `json:"postrequisites"`
}
