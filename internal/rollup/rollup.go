// Package rollup aggregates item progress into module and course progress.
// Everything here is pure and recomputed on access; nothing is persisted.
package rollup

import "github.com/alexanderramin/coursegate/internal/domain"

// ItemProgress is one content item's normalized percentage.
type ItemProgress struct {
	ContentID string
	Type      domain.ContentType
	Percent   int
	Completed bool
}

type ModuleProgress struct {
	ModuleID   string
	Percentage int
	Completed  bool
	Items      []ItemProgress
}

type CourseProgress struct {
	CourseID   string
	Percentage int
	Completed  bool
	Modules    []ModuleProgress
}

// Mean is the arithmetic mean of percentages rounded half-up. An empty
// input is vacuously complete.
func Mean(percentages []int) int {
	if len(percentages) == 0 {
		return 100
	}
	sum := 0
	for _, p := range percentages {
		sum += domain.ClampPct(p)
	}
	return domain.ClampPct(domain.RoundHalfUp(float64(sum) / float64(len(percentages))))
}

// Module averages its items. A module with no items is complete.
func Module(moduleID string, items []ItemProgress) ModuleProgress {
	pcts := make([]int, len(items))
	for i, it := range items {
		pcts[i] = it.Percent
		if it.Completed {
			pcts[i] = 100
		}
	}
	pct := Mean(pcts)
	return ModuleProgress{ModuleID: moduleID, Percentage: pct, Completed: pct >= 100, Items: items}
}

// Course averages its modules' percentages. A course with no modules is
// complete.
func Course(courseID string, modules []ModuleProgress) CourseProgress {
	pcts := make([]int, len(modules))
	for i, m := range modules {
		pcts[i] = m.Percentage
	}
	pct := Mean(pcts)
	return CourseProgress{CourseID: courseID, Percentage: pct, Completed: pct >= 100, Modules: modules}
}
