package scorm

import (
	"regexp"
	"strings"
	"time"
)

// Extractor turns one line of package debug output into progress signals.
// Extraction is best effort: a line that matches nothing yields nil.
type Extractor interface {
	Extract(line string, at time.Time) []ProgressSignal
}

// NopExtractor disables log scraping for a session.
type NopExtractor struct{}

func (NopExtractor) Extract(string, time.Time) []ProgressSignal { return nil }

type logPattern struct {
	kind SignalKind
	re   *regexp.Regexp
}

// LogExtractor matches the trace formats common authoring tools print when
// they talk to the runtime, e.g. `cmi.location=slide_4`,
// `SetValue("cmi.suspend_data", "{...}")` or `Overall Result: Progress: 40%`.
type LogExtractor struct {
	patterns []logPattern
}

const (
	keyTail   = `["']?\s*[=:,]\s*["']?`
	tokenTail = `([^"'\s,)]+)`
)

func NewLogExtractor() *LogExtractor {
	return &LogExtractor{patterns: []logPattern{
		{SignalLocation, regexp.MustCompile(`cmi\.core\.lesson_location` + keyTail + tokenTail)},
		{SignalLocation, regexp.MustCompile(`cmi\.location` + keyTail + tokenTail)},
		{SignalSuspendData, regexp.MustCompile(`cmi\.suspend_data` + keyTail + `(.+?)["']?\s*\)?\s*;?\s*$`)},
		{SignalSessionTime, regexp.MustCompile(`cmi\.(?:core\.)?session_time` + keyTail + tokenTail)},
		{SignalProgress, regexp.MustCompile(`(?i)Overall Result:\s*Progress:\s*(\d+(?:\.\d+)?)\s*%`)},
		{SignalProgressMeasure, regexp.MustCompile(`cmi\.progress_measure` + keyTail + `(\d*\.?\d+)`)},
		{SignalStatus, regexp.MustCompile(`cmi\.(?:core\.lesson_status|completion_status|success_status)` + keyTail + `([a-zA-Z ]+?)["']?\s*(?:[,)]|$)`)},
	}}
}

func (e *LogExtractor) Extract(line string, at time.Time) []ProgressSignal {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	var out []ProgressSignal
	for _, p := range e.patterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		out = append(out, ProgressSignal{Kind: p.kind, Value: value, Source: SourceLog, At: at})
	}
	return out
}
