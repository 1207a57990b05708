// Package replay drives a SCORM bridge session from a recorded trace of
// runtime calls, log lines and learner actions on a manual clock. It is
// used to reproduce what a package did without a browser.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/coursegate/internal/scorm"
)

type Trace struct {
	Target scorm.Target  `json:"target"`
	Launch LaunchOptions `json:"launch"`
	// Start is the manual clock's initial time. Zero uses a fixed epoch so
	// replays are repeatable.
	Start  time.Time `json:"start"`
	Events []Event   `json:"events"`
}

type LaunchOptions struct {
	HookFunction         string `json:"hookFunction,omitempty"`
	ResumeEvent          string `json:"resumeEvent,omitempty"`
	LaunchURL            string `json:"launchUrl,omitempty"`
	LocationParam        string `json:"locationParam,omitempty"`
	DisableLogExtraction bool   `json:"disableLogExtraction,omitempty"`
}

// Event is one step of the trace. Exactly one of Call, Log, Action or
// Relaunch is set. After advances the clock before the step runs, which
// fires any debounced saves that fall due.
type Event struct {
	After    Duration `json:"after,omitempty"`
	Call     string   `json:"call,omitempty"`
	Args     []string `json:"args,omitempty"`
	Log      string   `json:"log,omitempty"`
	Action   string   `json:"action,omitempty"`
	Location string   `json:"location,omitempty"`
	Relaunch bool     `json:"relaunch,omitempty"`
}

// Duration reads Go duration strings such as "1.5s" from JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q is negative", s)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func LoadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return ParseTrace(data)
}

func ParseTrace(data []byte) (*Trace, error) {
	var tr Trace
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return &tr, nil
}

func (tr *Trace) Validate() error {
	var errs []error
	if tr.Target.UserID == "" || tr.Target.CourseID == "" || tr.Target.ContentID == "" {
		errs = append(errs, errors.New("target needs userId, courseId and contentId"))
	}
	for i, ev := range tr.Events {
		set := 0
		for _, on := range []bool{ev.Call != "", ev.Log != "", ev.Action != "", ev.Relaunch} {
			if on {
				set++
			}
		}
		if set != 1 {
			errs = append(errs, fmt.Errorf("events[%d]: exactly one of call, log, action or relaunch is required", i))
		}
	}
	return errors.Join(errs...)
}
