package scorm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/coursegate/internal/logger"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// RegistryConfig tunes session housekeeping. Zero values take defaults.
type RegistryConfig struct {
	AutosaveInterval time.Duration
	IdleTimeout      time.Duration
	Clock            Clock
	Cache            SnapshotCache
	Log              *logger.Logger
	NewID            func() string
}

// LaunchRequest describes one package launch and the resume mechanisms the
// package is known to support.
type LaunchRequest struct {
	Target Target
	// HookFunction is a global function the package exposes to jump to a
	// saved location.
	HookFunction string
	// ResumeEvent is a custom event name the package listens for.
	ResumeEvent string
	// LaunchURL and LocationParam enable relaunching with the location in
	// the query string.
	LaunchURL     string
	LocationParam string
	// DisableLogExtraction turns off scraping of the package's debug output.
	DisableLogExtraction bool
}

// Registry owns the live sessions of this process and runs their periodic
// autosave and idle sweep.
type Registry struct {
	store Store
	cfg   RegistryConfig
	log   *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	cron *cron.Cron
}

func NewRegistry(store Store, cfg RegistryConfig) *Registry {
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = WallClock()
	}
	if cfg.Log == nil {
		cfg.Log = logger.NewNop()
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.New().String() }
	}
	return &Registry{
		store:    store,
		cfg:      cfg,
		log:      cfg.Log,
		sessions: make(map[string]*Session),
	}
}

// Launch creates a session, hands it its persisted state and registers it.
// Load failures are logged and the session starts fresh.
func (r *Registry) Launch(ctx context.Context, req LaunchRequest) (*Session, error) {
	if req.Target.UserID == "" || req.Target.CourseID == "" || req.Target.ContentID == "" {
		return nil, fmt.Errorf("%w: user, course and content ids are required", ErrInvalidLaunch)
	}

	var extractor Extractor = NewLogExtractor()
	if req.DisableLogExtraction {
		extractor = NopExtractor{}
	}
	s := newSession(r.cfg.NewID(), req.Target, sessionDeps{
		store:     r.store,
		cache:     r.cfg.Cache,
		clock:     r.cfg.Clock,
		log:       r.log,
		extractor: extractor,
		resumers: []Resumer{
			HookResumer{Function: req.HookFunction},
			EventResumer{Event: req.ResumeEvent},
			URLParamResumer{LaunchURL: req.LaunchURL, Param: req.LocationParam},
		},
	})
	s.bridge()
	s.prime(r.loadSnapshot(ctx, req.Target))

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	r.log.Info("scorm session launched", "session", s.ID(), "state", s.State().String())
	return s, nil
}

// loadSnapshot prefers a cached snapshot newer than the persisted one; it
// holds state a previous session changed but never committed.
func (r *Registry) loadSnapshot(ctx context.Context, t Target) *Snapshot {
	persisted, err := r.store.Load(ctx, t)
	if err != nil {
		r.log.Warn("loading resume data failed", "content_id", t.ContentID, "error", err)
		persisted = nil
	}
	if r.cfg.Cache == nil {
		return persisted
	}
	cached, err := r.cfg.Cache.Get(ctx, t)
	if err != nil {
		r.log.Debug("snapshot cache read failed", "error", err)
		return persisted
	}
	if cached == nil || (persisted != nil && !cached.UpdatedAt.After(persisted.UpdatedAt)) {
		return persisted
	}
	if persisted != nil && persisted.Completed {
		cached.Completed = true
	}
	return cached
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Unload flushes a session and forgets it.
func (r *Registry) Unload(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s.Unload(ctx)
}

func (r *Registry) list() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// AutosaveAll saves every session with unsaved changes and returns how many
// saves failed.
func (r *Registry) AutosaveAll(ctx context.Context) int {
	failed := 0
	for _, s := range r.list() {
		if err := s.Autosave(ctx); err != nil {
			failed++
		}
	}
	return failed
}

// SweepIdle unloads sessions with no activity for the idle timeout and
// returns how many were removed.
func (r *Registry) SweepIdle(ctx context.Context) int {
	now := r.cfg.Clock.Now()
	var idle []string
	for _, s := range r.list() {
		if now.Sub(s.LastActivity()) >= r.cfg.IdleTimeout {
			idle = append(idle, s.ID())
		}
	}
	for _, id := range idle {
		if err := r.Unload(ctx, id); err != nil {
			r.log.Warn("idle session flush failed", "session", id, "error", err)
		}
	}
	if len(idle) > 0 {
		r.log.Info("swept idle scorm sessions", "count", len(idle))
	}
	return len(idle)
}

// Start schedules autosave and the idle sweep.
func (r *Registry) Start() error {
	c := cron.New()
	autosave := fmt.Sprintf("@every %s", r.cfg.AutosaveInterval)
	if _, err := c.AddFunc(autosave, func() {
		if failed := r.AutosaveAll(context.Background()); failed > 0 {
			r.log.Warn("scorm autosave had failures", "failed", failed)
		}
	}); err != nil {
		return fmt.Errorf("scheduling autosave: %w", err)
	}
	sweep := fmt.Sprintf("@every %s", sweepInterval(r.cfg.IdleTimeout))
	if _, err := c.AddFunc(sweep, func() {
		r.SweepIdle(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduling idle sweep: %w", err)
	}
	c.Start()
	r.cron = c
	return nil
}

// Stop waits for running jobs, then flushes and drops every session.
func (r *Registry) Stop(ctx context.Context) {
	if r.cron != nil {
		<-r.cron.Stop().Done()
		r.cron = nil
	}
	for _, s := range r.list() {
		_ = r.Unload(ctx, s.ID())
	}
}

func sweepInterval(idle time.Duration) time.Duration {
	d := idle / 4
	if d < time.Second {
		return time.Second
	}
	if d > time.Minute {
		return time.Minute
	}
	return d
}
