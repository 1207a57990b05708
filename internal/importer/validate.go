package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/domain"
)

var (
	validPhases = map[string]bool{string(domain.PhasePre): true, string(domain.PhasePost): true}
	validKinds  = map[string]bool{
		string(domain.SubmissionSurvey):     true,
		string(domain.SubmissionAssignment): true,
		string(domain.SubmissionFeedback):   true,
	}
)

// ValidateCatalogSchema checks the import schema for errors before
// conversion. Returns a slice of all validation errors found.
func ValidateCatalogSchema(schema *CatalogSchema) []error {
	var errs []error

	if schema.Course.ID == "" {
		errs = append(errs, fmt.Errorf("course.id is required"))
	}

	moduleRefs := make(map[string]bool)
	errs = append(errs, validateModules(schema.Modules, moduleRefs)...)
	errs = append(errs, validateItems(schema.Items, moduleRefs)...)
	errs = append(errs, validateRequirements(schema.Requirements)...)
	errs = append(errs, validateAttempts(schema.Attempts)...)
	errs = append(errs, validateSubmissions(schema.Submissions)...)

	return errs
}

func validateModules(modules []ModuleImport, refs map[string]bool) []error {
	var errs []error
	for i, m := range modules {
		prefix := fmt.Sprintf("modules[%d]", i)
		if m.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[m.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref %q is duplicated", prefix, m.Ref))
		}
		refs[m.Ref] = true
		if m.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
	}
	return errs
}

func validateItems(items []ItemImport, moduleRefs map[string]bool) []error {
	var errs []error
	joinIDs := make(map[string]bool)
	for i, it := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		if !moduleRefs[it.ModuleRef] {
			errs = append(errs, fmt.Errorf("%s.module_ref %q does not match any module", prefix, it.ModuleRef))
		}
		if !domain.ValidContentTypes[domain.ContentType(it.Type)] {
			errs = append(errs, fmt.Errorf("%s.type: invalid value %q", prefix, it.Type))
		}
		if it.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if it.JoinID != "" {
			if joinIDs[it.JoinID] {
				errs = append(errs, fmt.Errorf("%s.join_id %q is duplicated", prefix, it.JoinID))
			}
			joinIDs[it.JoinID] = true
		}
	}
	return errs
}

func validateRequirements(reqs []RequirementImport) []error {
	var errs []error
	for i, r := range reqs {
		prefix := fmt.Sprintf("requirements[%d]", i)
		if !validPhases[r.Phase] {
			errs = append(errs, fmt.Errorf("%s.phase: invalid value %q", prefix, r.Phase))
		}
		// Unlisted requirement types are accepted; the gate treats them as
		// satisfied.
		if r.Type == "" {
			errs = append(errs, fmt.Errorf("%s.type is required", prefix))
		}
		if r.TargetID == "" {
			errs = append(errs, fmt.Errorf("%s.target_id is required", prefix))
		}
	}
	return errs
}

func validateAttempts(attempts []AttemptImport) []error {
	var errs []error
	for i, a := range attempts {
		prefix := fmt.Sprintf("attempts[%d]", i)
		if a.AssessmentID == "" {
			errs = append(errs, fmt.Errorf("%s.assessment_id is required", prefix))
		}
		if a.UserID == "" {
			errs = append(errs, fmt.Errorf("%s.user_id is required", prefix))
		}
		errs = append(errs, validateTimestamp(prefix+".attempted_at", a.AttemptedAt)...)
	}
	return errs
}

func validateSubmissions(subs []SubmissionImport) []error {
	var errs []error
	for i, s := range subs {
		prefix := fmt.Sprintf("submissions[%d]", i)
		if !validKinds[s.Kind] {
			errs = append(errs, fmt.Errorf("%s.kind: invalid value %q", prefix, s.Kind))
		}
		if s.TargetID == "" {
			errs = append(errs, fmt.Errorf("%s.target_id is required", prefix))
		}
		if s.UserID == "" {
			errs = append(errs, fmt.Errorf("%s.user_id is required", prefix))
		}
		errs = append(errs, validateTimestamp(prefix+".submitted_at", s.SubmittedAt)...)
	}
	return errs
}

func validateTimestamp(field, v string) []error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, v); err != nil {
		return []error{fmt.Errorf("%s: invalid timestamp %q (expected RFC3339)", field, v)}
	}
	return nil
}
