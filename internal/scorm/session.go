package scorm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/logger"
)

// State is the resume/completion lifecycle of a launch.
type State int

const (
	StateUninitialized State = iota
	StateBridging
	StateReady
	StateResuming
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateBridging:
		return "bridging"
	case StateReady:
		return "ready"
	case StateResuming:
		return "resuming"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "uninitialized"
	}
}

// postAction is work a call schedules to run after the session lock is
// released, typically store or cache I/O.
type postAction func(ctx context.Context)

// Session is one launch of a package: its runtime data table, progress
// cache and lifecycle state. All methods are safe for concurrent use.
type Session struct {
	id        string
	target    Target
	store     Store
	cache     SnapshotCache
	clock     Clock
	log       *logger.Logger
	debounce  *Debouncer
	extractor Extractor
	resumers  []Resumer

	mu           sync.Mutex
	state        State
	data         Cache
	acc          *Accumulator
	table        map[string]string
	initialized  bool
	terminated   bool
	lastErr      apiError
	lastDiag     string
	resumeFrom   *Snapshot
	completed    bool
	commands     []Command
	rev          uint64
	savedRev     uint64
	lastActivity time.Time
	lastLogTime  string
}

type sessionDeps struct {
	store     Store
	cache     SnapshotCache
	clock     Clock
	log       *logger.Logger
	extractor Extractor
	resumers  []Resumer
}

func newSession(id string, target Target, deps sessionDeps) *Session {
	if deps.clock == nil {
		deps.clock = WallClock()
	}
	if deps.log == nil {
		deps.log = logger.NewNop()
	}
	if deps.extractor == nil {
		deps.extractor = NopExtractor{}
	}
	now := deps.clock.Now()
	return &Session{
		id:           id,
		target:       target,
		store:        deps.store,
		cache:        deps.cache,
		clock:        deps.clock,
		log:          deps.log.With("session", id, "course_id", target.CourseID, "content_id", target.ContentID),
		debounce:     NewDebouncer(deps.clock),
		extractor:    deps.extractor,
		resumers:     deps.resumers,
		state:        StateUninitialized,
		acc:          NewAccumulator(0, now),
		table:        make(map[string]string),
		lastActivity: now,
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) Target() Target { return s.target }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Snapshot returns the current cache in its persisted form.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ResumePoint returns the persisted position this launch started from, or
// nil when it started fresh.
func (s *Session) ResumePoint() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resumeFrom == nil {
		return nil
	}
	cp := *s.resumeFrom
	return &cp
}

func (s *Session) bridge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUninitialized {
		s.state = StateBridging
	}
}

// prime loads persisted state into the runtime table and picks the entry
// state: Completed for finished content, Resuming when there is a position
// to return to, Ready otherwise.
func (s *Session) prime(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if snap == nil {
		s.state = StateReady
		return
	}

	s.data = Cache{
		Location:        snap.Location,
		SuspendData:     snap.SuspendData,
		ProgressPercent: snap.ProgressPercent,
		LessonStatus:    snap.LessonStatus,
		Score:           snap.Score,
		LastUpdate:      snap.UpdatedAt,
	}
	s.acc = NewAccumulator(snap.SessionDuration(), now)
	s.data.SessionTime = s.acc.Total()
	if snap.Location != "" {
		s.table[keyLocation] = snap.Location
		s.table[keyLocation12] = snap.Location
	}
	if snap.SuspendData != "" {
		s.table[keySuspendData] = snap.SuspendData
	}

	switch {
	case snap.Completed:
		s.completed = true
		s.state = StateCompleted
	case snap.HasResumePoint():
		cp := *snap
		s.resumeFrom = &cp
		s.state = StateResuming
	default:
		s.state = StateReady
	}
}

// HandleSignal applies one progress signal from any source.
func (s *Session) HandleSignal(ctx context.Context, sig ProgressSignal) {
	s.mu.Lock()
	post := s.applyLocked(sig)
	s.mu.Unlock()
	s.run(ctx, post)
}

// IngestLog scrapes one line of package output and applies what it finds.
// It returns the number of signals extracted.
func (s *Session) IngestLog(ctx context.Context, line string, at time.Time) int {
	if at.IsZero() {
		at = s.clock.Now()
	}
	signals := s.extractor.Extract(line, at)
	for _, sig := range signals {
		s.HandleSignal(ctx, sig)
	}
	return len(signals)
}

func (s *Session) applyLocked(sig ProgressSignal) []postAction {
	now := sig.At
	if now.IsZero() {
		now = s.clock.Now()
	}
	s.lastActivity = now
	if s.state == StateReady {
		s.state = StateInProgress
	}

	var (
		changed    bool
		completing bool
		field      string
		delay      time.Duration
	)

	value := strings.TrimSpace(sig.Value)
	switch sig.Kind {
	case SignalLocation:
		if value != s.data.Location {
			s.data.Location = value
			s.table[keyLocation] = value
			s.table[keyLocation12] = value
			changed, field, delay = true, "location", LocationDebounce
		}
	case SignalSuspendData:
		if value != s.data.SuspendData {
			s.data.SuspendData = value
			s.table[keySuspendData] = value
			changed, field, delay = true, "suspend_data", SuspendDataDebounce
		}
	case SignalSessionTime:
		if sig.Source == SourceLog {
			if value == s.lastLogTime {
				return nil
			}
			s.lastLogTime = value
		}
		d, err := ParseDuration(value)
		if err != nil {
			s.log.Debug("unreadable session time", "value", value, "source", string(sig.Source))
			return nil
		}
		if s.acc.Add(d, now) {
			s.data.SessionTime = s.acc.Total()
			changed, field, delay = true, "session_time", SessionTimeDebounce
		}
	case SignalProgress, SignalProgressMeasure:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil
		}
		if sig.Kind == SignalProgressMeasure {
			if f < 0 || f > 1 {
				return nil
			}
			f *= 100
		}
		pct := domain.ClampPct(domain.RoundHalfUp(f))
		if s.data.ProgressPercent == nil || *s.data.ProgressPercent != pct {
			s.data.ProgressPercent = &pct
			changed, field, delay = true, "progress", LocationDebounce
		}
		completing = pct >= 100
	case SignalStatus:
		status := strings.ToLower(value)
		if status != s.data.LessonStatus {
			s.data.LessonStatus = status
			changed = true
		}
		completing = status == "completed" || status == "passed"
	case SignalScore:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil
		}
		if s.data.Score == nil || *s.data.Score != f {
			s.data.Score = &f
			changed = true
		}
	}

	if !changed && !completing {
		return nil
	}

	var post []postAction
	if changed {
		s.data.LastUpdate = now
		s.rev++
		if s.cache != nil {
			snap := s.snapshotLocked()
			post = append(post, func(ctx context.Context) { s.mirror(ctx, snap) })
		}
	}
	if s.state == StateCompleted {
		return post
	}
	if field != "" {
		s.debounce.Trigger(field, delay, func() {
			_ = s.flush(context.Background(), "debounce:"+field)
		})
	}
	if completing {
		post = append(post, func(ctx context.Context) {
			if err := s.MarkComplete(ctx); err != nil {
				s.log.Warn("completion not recorded", "error", err)
			}
		})
	}
	return post
}

func (s *Session) snapshotLocked() Snapshot {
	total := s.acc.Total()
	snap := Snapshot{
		Location:       s.data.Location,
		SuspendData:    s.data.SuspendData,
		SessionTime:    FormatISO(total),
		TotalTime:      FormatISO(total),
		SessionSeconds: int64(total / time.Second),
		LessonStatus:   s.data.LessonStatus,
		Completed:      s.completed,
		UpdatedAt:      s.data.LastUpdate,
	}
	if s.data.ProgressPercent != nil {
		pct := *s.data.ProgressPercent
		snap.ProgressPercent = &pct
	}
	if s.data.Score != nil {
		score := *s.data.Score
		snap.Score = &score
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = s.clock.Now()
	}
	snap.Percentage = snap.Progress()
	if s.completed {
		snap.Percentage = 100
	}
	return snap
}

func (s *Session) run(ctx context.Context, post []postAction) {
	for _, p := range post {
		p(ctx)
	}
}

func (s *Session) mirror(ctx context.Context, snap Snapshot) {
	if err := s.cache.Put(ctx, s.target, snap); err != nil {
		s.log.Debug("snapshot cache write failed", "error", err)
	}
}

// flush saves the cache when it changed since the last successful save.
// Completed sessions no longer write progress. Failures are logged and left
// for the next autosave or user action.
func (s *Session) flush(ctx context.Context, reason string) error {
	s.mu.Lock()
	if s.state == StateCompleted || s.rev == s.savedRev {
		s.mu.Unlock()
		return nil
	}
	snap := s.snapshotLocked()
	rev := s.rev
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.target, snap); err != nil {
		s.log.Warn("scorm save failed", "reason", reason, "error", err)
		return err
	}

	s.mu.Lock()
	if rev > s.savedRev {
		s.savedRev = rev
	}
	s.mu.Unlock()
	s.log.Debug("scorm snapshot saved", "reason", reason, "percentage", snap.Percentage)
	return nil
}

// Autosave is the periodic save; it is a no-op once completed.
func (s *Session) Autosave(ctx context.Context) error {
	return s.flush(ctx, "autosave")
}

// Unload is the best-effort flush when the learner leaves the page.
func (s *Session) Unload(ctx context.Context) error {
	s.debounce.Stop()
	s.mu.Lock()
	s.terminated = true
	s.mu.Unlock()
	return s.flush(ctx, "unload")
}

// MarkComplete persists the latest snapshot and, only if that succeeds,
// records completion. A failed first phase leaves the record untouched.
func (s *Session) MarkComplete(ctx context.Context) error {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return nil
	}
	snap := s.snapshotLocked()
	rev := s.rev
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.target, snap); err != nil {
		return fmt.Errorf("saving snapshot before completion: %w", err)
	}
	if err := s.store.Complete(ctx, s.target); err != nil {
		return fmt.Errorf("recording completion: %w", err)
	}

	s.mu.Lock()
	if rev > s.savedRev {
		s.savedRev = rev
	}
	s.completed = true
	s.state = StateCompleted
	s.mu.Unlock()

	s.debounce.Stop()
	s.log.Info("scorm content completed", "percentage", snap.Percentage)
	return nil
}

// DrainCommands returns and clears the commands queued for the page.
func (s *Session) DrainCommands() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.commands
	s.commands = nil
	return out
}
