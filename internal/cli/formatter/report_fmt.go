package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/replay"
	"github.com/alexanderramin/coursegate/internal/service"
)

const barWidth = 20

// FormatCourseReport renders a course rollup: one table per module followed
// by the course total.
func FormatCourseReport(r *app.CourseReport) string {
	var b strings.Builder
	b.WriteString(Header("Course " + r.CourseID))
	b.WriteString("\n\n")

	if len(r.Modules) == 0 {
		b.WriteString(Dim("No modules. An empty course counts as complete."))
		b.WriteString("\n\n")
	}

	for _, m := range r.Modules {
		title := m.Title
		if title == "" {
			title = m.ModuleID
		}
		fmt.Fprintf(&b, "%s  %s\n", Bold(title), RenderProgress(m.Percentage, barWidth))

		rows := make([][]string, 0, len(m.Items))
		for _, it := range m.Items {
			rows = append(rows, []string{
				OrDash(it.Title),
				string(it.Type),
				fmt.Sprintf("%d%%", it.Percentage),
				StatusIndicator(it.Status),
				OrDash(it.MatchedBy),
			})
		}
		b.WriteString(RenderTable([]Column{
			{Title: "CONTENT"}, {Title: "TYPE"}, {Title: "PROGRESS", Right: true}, {Title: "STATUS"}, {Title: "MATCHED"},
		}, rows))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s  %s", Bold("Overall"), RenderProgress(r.Percentage, barWidth))
	if r.Completed {
		b.WriteString("  " + StatusIndicator("completed"))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatGate renders a gate decision with the unmet prerequisites.
func FormatGate(courseID string, g *app.GateResponse) string {
	var b strings.Builder
	b.WriteString(Header("Gate " + courseID))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Course progress   %s\n", RenderProgress(g.CoursePercentage, barWidth))
	fmt.Fprintf(&b, "Prerequisites     %s\n", LockIndicator(g.PrerequisitesSatisfied, "SATISFIED", "UNMET"))
	fmt.Fprintf(&b, "Post-requisites   %s\n", LockIndicator(g.PostrequisitesUnlocked, "UNLOCKED", "LOCKED"))

	if len(g.Unmet) > 0 {
		b.WriteString("\n")
		rows := make([][]string, 0, len(g.Unmet))
		for _, u := range g.Unmet {
			rows = append(rows, []string{string(u.Type), u.TargetID, TruncID(u.RequirementID)})
		}
		b.WriteString(RenderTable(Cols("UNMET", "TARGET", "ID"), rows))
	}
	if g.PostrequisitesUnlocked && len(g.Postrequisites) > 0 {
		b.WriteString("\n")
		b.WriteString(Dim("Unlocked: " + strings.Join(g.Postrequisites, ", ")))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCheckProgress renders one content item's progress.
func FormatCheckProgress(contentID string, p *app.CheckProgressResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", Bold(contentID), RenderProgress(p.Percentage, barWidth), StatusIndicator(p.Status))
	fmt.Fprintf(&b, "%s %s", Dim("lesson status:"), p.LessonStatus)
	if p.MatchedBy != "" {
		fmt.Fprintf(&b, "  %s %s", Dim("matched by:"), p.MatchedBy)
	}
	b.WriteString("\n")
	return b.String()
}

// FormatImportResult summarizes a catalog import.
func FormatImportResult(r *service.ImportResult) string {
	rows := [][]string{
		{"modules", fmt.Sprint(r.ModuleCount)},
		{"items", fmt.Sprint(r.ItemCount)},
		{"requirements", fmt.Sprint(r.RequirementCount)},
		{"attempts", fmt.Sprint(r.AttemptCount)},
		{"submissions", fmt.Sprint(r.SubmissionCount)},
	}
	return StyleGreen.Render("✔ Imported course "+r.CourseID) + "\n\n" +
		RenderTable([]Column{{Title: "KIND"}, {Title: "COUNT", Right: true}}, rows)
}

// FormatReplay renders each replayed step and the final session state.
func FormatReplay(r *replay.Result) string {
	var b strings.Builder
	b.WriteString(Header("Replay " + r.SessionID))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(r.Steps))
	for _, st := range r.Steps {
		result := st.Result
		if st.Err != "" {
			result = StyleRed.Render(st.Err)
		}
		rows = append(rows, []string{
			fmt.Sprint(st.Index),
			st.At.Format("15:04:05.000"),
			st.Kind,
			st.Detail,
			OrDash(result),
			st.State,
		})
	}
	b.WriteString(RenderTable([]Column{
		{Title: "#", Right: true}, {Title: "AT"}, {Title: "KIND"}, {Title: "DETAIL"}, {Title: "RESULT"}, {Title: "STATE"},
	}, rows))
	b.WriteString("\n")

	snap := r.Snapshot
	content := fmt.Sprintf("%s %s\n%s %s\n%s %s\n%s %s",
		Dim("state:    "), r.State,
		Dim("progress: "), RenderProgress(snap.Percentage, barWidth),
		Dim("location: "), OrDash(snap.Location),
		Dim("time:     "), OrDash(snap.TotalTime),
	)
	if len(r.Commands) > 0 {
		kinds := make([]string, len(r.Commands))
		for i, c := range r.Commands {
			kinds[i] = string(c.Kind)
		}
		content += fmt.Sprintf("\n%s %s", Dim("pending:  "), strings.Join(kinds, ", "))
	}
	b.WriteString(RenderBox("final", content))
	b.WriteString("\n")
	return b.String()
}
