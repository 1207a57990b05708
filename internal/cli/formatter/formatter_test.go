package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/gate"
	"github.com/alexanderramin/coursegate/internal/replay"
	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/alexanderramin/coursegate/internal/service"
	"github.com/stretchr/testify/assert"
)

// ansiPattern matches ANSI escape sequences so assertions are
// terminal-independent.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name   string
		pct    int
		width  int
		filled int
		label  string
	}{
		{"empty", 0, 10, 0, "  0%"},
		{"half", 50, 10, 5, " 50%"},
		{"full", 100, 10, 10, "100%"},
		{"over 100 clamps", 150, 10, 10, "100%"},
		{"negative clamps", -5, 10, 0, "  0%"},
		{"tiny width clamps to 2", 50, 1, 1, " 50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(RenderProgress(tt.pct, tt.width))
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.True(t, strings.HasSuffix(got, tt.label), got)
		})
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	got := stripANSI(RenderTable([]Column{{Title: "NAME"}, {Title: "PCT", Right: true}}, [][]string{
		{"video", "100%"},
		{"a", "5%"},
	}))
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "NAME    PCT", lines[0])
	assert.Equal(t, "video  100%", lines[2])
	assert.Equal(t, "a"+strings.Repeat(" ", 8)+"5%", lines[3])
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatCourseReport(t *testing.T) {
	report := &app.CourseReport{
		CourseID:   "course-1",
		Percentage: 92,
		Modules: []app.ModuleReport{
			{ModuleID: "m1", Title: "Orientation", Percentage: 83, Items: []app.ItemReport{
				{Title: "Welcome", Type: domain.ContentVideo, Percentage: 100, Completed: true, Status: domain.StatusCompleted, MatchedBy: "vid-1"},
				{Title: "Floor plan", Type: domain.ContentImage, Percentage: 50, Status: domain.StatusInProgress},
			}},
			{ModuleID: "m2", Percentage: 100, Completed: true},
		},
	}
	got := stripANSI(FormatCourseReport(report))
	assert.Contains(t, got, "COURSE COURSE-1")
	assert.Contains(t, got, "Orientation")
	assert.Contains(t, got, " 83%")
	assert.Contains(t, got, "✔ COMPLETED")
	assert.Contains(t, got, "● IN PROGRESS")
	assert.Contains(t, got, "m2")
	assert.Contains(t, got, " 92%")
}

func TestFormatCourseReport_Empty(t *testing.T) {
	got := stripANSI(FormatCourseReport(&app.CourseReport{CourseID: "c", Percentage: 100, Completed: true}))
	assert.Contains(t, got, "An empty course counts as complete")
	assert.Contains(t, got, "100%")
}

func TestFormatGate(t *testing.T) {
	resp := &app.GateResponse{
		Decision: gate.Decision{
			CourseCompleted: true,
			Unmet:           []gate.Unmet{{RequirementID: "0123456789", Type: domain.RequirementAssessment, TargetID: "entry-quiz"}},
		},
		CoursePercentage: 100,
		Postrequisites:   []string{"exit-survey"},
	}
	got := stripANSI(FormatGate("course-1", resp))
	assert.Contains(t, got, "▲ UNMET")
	assert.Contains(t, got, "▲ LOCKED")
	assert.Contains(t, got, "entry-quiz")
	assert.Contains(t, got, "01234567")
	assert.NotContains(t, got, "Unlocked:")

	resp.Unmet = nil
	resp.PrerequisitesSatisfied = true
	resp.PostrequisitesUnlocked = true
	got = stripANSI(FormatGate("course-1", resp))
	assert.Contains(t, got, "● SATISFIED")
	assert.Contains(t, got, "● UNLOCKED")
	assert.Contains(t, got, "Unlocked: exit-survey")
}

func TestFormatCheckProgress(t *testing.T) {
	got := stripANSI(FormatCheckProgress("pkg-1", &app.CheckProgressResponse{
		LessonStatus: "incomplete", Percentage: 40, Status: domain.StatusInProgress, MatchedBy: "pkg-1",
	}))
	assert.Contains(t, got, "pkg-1")
	assert.Contains(t, got, " 40%")
	assert.Contains(t, got, "lesson status: incomplete")
	assert.Contains(t, got, "matched by: pkg-1")
}

func TestFormatImportResult(t *testing.T) {
	got := stripANSI(FormatImportResult(&service.ImportResult{CourseID: "course-1", ModuleCount: 2, ItemCount: 4}))
	assert.Contains(t, got, "Imported course course-1")
	assert.Contains(t, got, "items")
}

func TestFormatReplay(t *testing.T) {
	at := time.Date(2026, 1, 1, 9, 0, 1, 0, time.UTC)
	got := stripANSI(FormatReplay(&replay.Result{
		SessionID: "s-1",
		State:     "completed",
		Steps: []replay.Step{
			{Index: 0, At: at, Kind: "call", Detail: `Initialize("")`, Result: "true", State: "ready"},
			{Index: 1, At: at, Kind: "action", Detail: "quick-jump", Err: "scorm session already completed", State: "completed"},
		},
		Snapshot: scorm.Snapshot{Percentage: 100, Location: "slide_4", TotalTime: "PT1M30S"},
		Commands: []scorm.Command{{Kind: scorm.CommandCallHook}},
	}))
	assert.Contains(t, got, "REPLAY S-1")
	assert.Contains(t, got, "09:00:01.000")
	assert.Contains(t, got, "scorm session already completed")
	assert.Contains(t, got, "slide_4")
	assert.Contains(t, got, "PT1M30S")
	assert.Contains(t, got, "call-hook")
}
