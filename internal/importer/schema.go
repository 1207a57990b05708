package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// CatalogSchema is the top-level JSON structure for catalog import: the
// course structure from content management plus learner facts from the
// assessment engine and form collaborators.
type CatalogSchema struct {
	Course       CourseImport        `json:"course"`
	Modules      []ModuleImport      `json:"modules"`
	Items        []ItemImport        `json:"items"`
	Requirements []RequirementImport `json:"requirements,omitempty"`
	Attempts     []AttemptImport     `json:"attempts,omitempty"`
	Submissions  []SubmissionImport  `json:"submissions,omitempty"`
}

type CourseImport struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// ModuleImport defines a module; Ref is local to the file unless ID is set.
type ModuleImport struct {
	Ref   string `json:"ref"`
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// ItemImport places content in a module. JoinID defaults to a fresh id;
// SourceID is the reusable package id, if any.
type ItemImport struct {
	ModuleRef string `json:"module_ref"`
	JoinID    string `json:"join_id,omitempty"`
	SourceID  string `json:"source_id,omitempty"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
}

type RequirementImport struct {
	Phase    string `json:"phase"`
	Type     string `json:"type"`
	TargetID string `json:"target_id"`
	Required *bool  `json:"required,omitempty"`
}

type AttemptImport struct {
	AssessmentID string   `json:"assessment_id"`
	UserID       string   `json:"user_id"`
	Passed       *bool    `json:"passed,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	AttemptedAt  string   `json:"attempted_at,omitempty"`
}

type SubmissionImport struct {
	Kind        string `json:"kind"`
	TargetID    string `json:"target_id"`
	UserID      string `json:"user_id"`
	SubmittedAt string `json:"submitted_at,omitempty"`
}

// LoadCatalogSchema reads and parses a catalog import JSON file.
func LoadCatalogSchema(path string) (*CatalogSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalogSchema(data)
}

func ParseCatalogSchema(data []byte) (*CatalogSchema, error) {
	var schema CatalogSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
