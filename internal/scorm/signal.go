package scorm

import "time"

// SignalKind names the piece of runtime state a signal carries.
type SignalKind string

const (
	SignalLocation        SignalKind = "location"
	SignalSuspendData     SignalKind = "suspend_data"
	SignalSessionTime     SignalKind = "session_time"
	SignalProgress        SignalKind = "progress"         // percent, 0..100
	SignalProgressMeasure SignalKind = "progress_measure" // ratio, 0..1
	SignalStatus          SignalKind = "status"
	SignalScore           SignalKind = "score"
)

// SignalSource records where a signal came from.
type SignalSource string

const (
	SourceAPI SignalSource = "api"
	SourceLog SignalSource = "log"
)

// ProgressSignal is the one event type the bridge consumes, whether the
// package called the runtime API or the value was scraped from its log.
type ProgressSignal struct {
	Kind   SignalKind
	Value  string
	Source SignalSource
	At     time.Time
}
