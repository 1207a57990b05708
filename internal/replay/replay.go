package replay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/coursegate/internal/logger"
	"github.com/alexanderramin/coursegate/internal/scorm"
)

var defaultStart = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

type Step struct {
	Index  int       `json:"index"`
	At     time.Time `json:"at"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail"`
	Result string    `json:"result"`
	State  string    `json:"state"`
	Err    string    `json:"error,omitempty"`
}

type Result struct {
	SessionID string          `json:"sessionId"`
	Steps     []Step          `json:"steps"`
	State     string          `json:"state"`
	Completed bool            `json:"completed"`
	Snapshot  scorm.Snapshot  `json:"snapshot"`
	Commands  []scorm.Command `json:"commands"`
}

type Options struct {
	Cache scorm.SnapshotCache
	Log   *logger.Logger
}

// Run replays tr against store and flushes the session at the end. Step
// failures are recorded on the step; only launch failures abort the run.
func Run(ctx context.Context, store scorm.Store, tr *Trace, opts Options) (*Result, error) {
	start := tr.Start
	if start.IsZero() {
		start = defaultStart
	}
	clock := scorm.NewManualClock(start.UTC())
	reg := scorm.NewRegistry(store, scorm.RegistryConfig{
		Clock: clock,
		Cache: opts.Cache,
		Log:   opts.Log,
	})
	launch := scorm.LaunchRequest{
		Target:               tr.Target,
		HookFunction:         tr.Launch.HookFunction,
		ResumeEvent:          tr.Launch.ResumeEvent,
		LaunchURL:            tr.Launch.LaunchURL,
		LocationParam:        tr.Launch.LocationParam,
		DisableLogExtraction: tr.Launch.DisableLogExtraction,
	}

	s, err := reg.Launch(ctx, launch)
	if err != nil {
		return nil, fmt.Errorf("launching session: %w", err)
	}

	res := &Result{}
	for i, ev := range tr.Events {
		clock.Advance(time.Duration(ev.After))
		step := Step{Index: i, At: clock.Now()}

		switch {
		case ev.Call != "":
			step.Kind = "call"
			step.Detail = ev.Call + "(" + strings.Join(quoteAll(ev.Args), ", ") + ")"
			out, err := s.Call(ctx, ev.Call, ev.Args...)
			step.Result = out
			step.setErr(err)
		case ev.Log != "":
			step.Kind = "log"
			step.Detail = ev.Log
			step.Result = fmt.Sprintf("%d signals", s.IngestLog(ctx, ev.Log, time.Time{}))
		case ev.Action != "":
			step.Kind = "action"
			step.Detail = ev.Action
			step.Result, err = act(ctx, s, ev)
			step.setErr(err)
		case ev.Relaunch:
			step.Kind = "relaunch"
			if err := reg.Unload(ctx, s.ID()); err != nil {
				step.setErr(err)
			}
			next, err := reg.Launch(ctx, launch)
			if err != nil {
				return nil, fmt.Errorf("relaunching session: %w", err)
			}
			s = next
			step.Result = "launched"
		}
		step.State = s.State().String()
		res.Steps = append(res.Steps, step)
	}

	res.SessionID = s.ID()
	res.Commands = s.DrainCommands()
	if err := reg.Unload(ctx, s.ID()); err != nil {
		res.Steps = append(res.Steps, Step{Index: len(tr.Events), At: clock.Now(), Kind: "unload", Err: err.Error()})
	}
	res.State = s.State().String()
	res.Completed = s.Completed()
	res.Snapshot = s.Snapshot()
	return res, nil
}

func act(ctx context.Context, s *scorm.Session, ev Event) (string, error) {
	switch ev.Action {
	case "resume":
		r, err := s.Resume()
		if err != nil {
			return "", err
		}
		if !r.Applied {
			return "no strategy applied", nil
		}
		return "resumed via " + r.Strategy, nil
	case "quick-jump":
		cmd, err := s.QuickJump(ev.Location)
		if err != nil {
			return "", err
		}
		return "navigate " + cmd.Location, nil
	case "manual-resume":
		info := s.ManualResume()
		return fmt.Sprintf("location %s, %d units, ~%d%%, %s", info.Location, info.UnitsVisited, info.EstimatedPercent, info.TimeSpent), nil
	case "start-over":
		s.StartOver()
		return "restarted", nil
	case "mark-complete":
		if err := s.MarkComplete(ctx); err != nil {
			return "", err
		}
		return "completed", nil
	default:
		return "", fmt.Errorf("%w: %s", scorm.ErrUnknownAction, ev.Action)
	}
}

func (st *Step) setErr(err error) {
	if err != nil {
		st.Err = err.Error()
	}
}

func quoteAll(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = fmt.Sprintf("%q", a)
	}
	return out
}
