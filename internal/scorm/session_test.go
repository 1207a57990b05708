package scorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launch(t *testing.T, reg *Registry, req LaunchRequest) *Session {
	t.Helper()
	if req.Target == (Target{}) {
		req.Target = testTarget
	}
	s, err := reg.Launch(context.Background(), req)
	require.NoError(t, err)
	return s
}

func call(t *testing.T, s *Session, method string, args ...string) string {
	t.Helper()
	out, err := s.Call(context.Background(), method, args...)
	require.NoError(t, err)
	return out
}

func TestSession_FreshLaunchIsReady(t *testing.T) {
	reg, _ := newTestRegistry(&fakeStore{})
	s := launch(t, reg, LaunchRequest{})

	assert.Equal(t, StateReady, s.State())
	assert.Nil(t, s.ResumePoint())

	call(t, s, "Initialize", "")
	assert.Equal(t, StateInProgress, s.State())
	assert.Equal(t, "ab-initio", call(t, s, "GetValue", "cmi.entry"))
}

func TestSession_PersistedPositionEntersResuming(t *testing.T) {
	store := &fakeStore{loaded: &Snapshot{Location: "slide_7", SuspendData: `{"h":{"a":1}}`, SessionSeconds: 120}}
	reg, _ := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})

	assert.Equal(t, StateResuming, s.State())
	call(t, s, "LMSInitialize", "")
	assert.Equal(t, StateResuming, s.State(), "initializing does not answer the resume prompt")
	assert.Equal(t, "slide_7", call(t, s, "LMSGetValue", "cmi.core.lesson_location"))
	assert.Equal(t, "resume", call(t, s, "LMSGetValue", "cmi.core.entry"))
	assert.Equal(t, "0000:02:00", call(t, s, "LMSGetValue", "cmi.core.total_time"))
	assert.Equal(t, "incomplete", call(t, s, "LMSGetValue", "cmi.core.lesson_status"))
}

func TestSession_CompletedRecordStartsCompleted(t *testing.T) {
	store := &fakeStore{loaded: &Snapshot{Location: "end", Completed: true}}
	reg, clock := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})

	assert.Equal(t, StateCompleted, s.State())
	call(t, s, "Initialize", "")
	assert.Equal(t, "true", call(t, s, "SetValue", "cmi.location", "slide_2"))
	assert.Equal(t, "slide_2", call(t, s, "GetValue", "cmi.location"), "table still updates for inspection")

	clock.Advance(5 * time.Second)
	require.NoError(t, s.Autosave(context.Background()))
	assert.Equal(t, 0, store.saveCount(), "completed sessions no longer persist progress")
}

func TestSession_DebouncedCommitCoalesces(t *testing.T) {
	store := &fakeStore{}
	reg, clock := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})
	call(t, s, "Initialize", "")

	call(t, s, "SetValue", "cmi.location", "s1")
	clock.Advance(400 * time.Millisecond)
	call(t, s, "SetValue", "cmi.location", "s2")
	clock.Advance(700 * time.Millisecond)
	assert.Equal(t, 0, store.saveCount())

	clock.Advance(100 * time.Millisecond)
	require.Equal(t, 1, store.saveCount())
	assert.Equal(t, "s2", store.lastSave().Location)
}

func TestSession_CommitSavesImmediately(t *testing.T) {
	store := &fakeStore{}
	reg, _ := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})
	call(t, s, "Initialize", "")

	call(t, s, "SetValue", "cmi.suspend_data", `{"h":{"a":1,"b":1,"c":1}}`)
	assert.Equal(t, "true", call(t, s, "Commit", ""))

	require.Equal(t, 1, store.saveCount())
	snap := store.lastSave()
	assert.Equal(t, 20, snap.Percentage)
	assert.Nil(t, snap.ProgressPercent)
}

func TestSession_CommitFailureIsLoggedNotSurfaced(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("db down")}
	reg, _ := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})
	call(t, s, "Initialize", "")
	call(t, s, "SetValue", "cmi.location", "s1")

	assert.Equal(t, "true", call(t, s, "Commit", ""))
	assert.Equal(t, "0", call(t, s, "GetLastError"))

	// The change is still pending and goes out with the next save.
	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()
	require.NoError(t, s.Autosave(context.Background()))
	assert.Equal(t, 1, store.saveCount())
}

func TestSession_SessionTimeAccumulates(t *testing.T) {
	store := &fakeStore{}
	reg, clock := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})
	call(t, s, "Initialize", "")

	for _, v := range []string{"PT2S", "PT0S", "PT3S"} {
		clock.Advance(time.Second)
		call(t, s, "SetValue", "cmi.session_time", v)
	}
	call(t, s, "Commit", "")

	snap := store.lastSave()
	assert.Equal(t, int64(5), snap.SessionSeconds)
	assert.Equal(t, "PT5S", snap.SessionTime)
	assert.Equal(t, "PT5S", snap.TotalTime)
}

func TestSession_ReportedProgressWinsOverEstimate(t *testing.T) {
	store := &fakeStore{}
	reg, _ := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})
	call(t, s, "Initialize", "")

	call(t, s, "SetValue", "cmi.suspend_data", `{"h":{"a":1}}`)
	call(t, s, "SetValue", "cmi.progress_measure", "0.42")
	call(t, s, "Commit", "")

	assert.Equal(t, 42, store.lastSave().Percentage)
}

func TestSession_CompletionStatusRunsTwoPhaseComplete(t *testing.T) {
	store := &fakeStore{}
	reg, _ := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})
	call(t, s, "LMSInitialize", "")

	assert.Equal(t, "true", call(t, s, "LMSSetValue", "cmi.core.lesson_status", "passed"))

	assert.Equal(t, []string{"save", "complete"}, store.calls)
	assert.True(t, s.Completed())
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, "completed", call(t, s, "GetValue", "cmi.completion_status"))
}

func TestSession_MarkCompleteSkipsPhaseTwoWhenSaveFails(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("write failed")}
	reg, _ := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})

	err := s.MarkComplete(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"save"}, store.calls)
	assert.False(t, s.Completed())
	assert.NotEqual(t, StateCompleted, s.State())
}

func TestSession_MarkCompleteFailedStatusWriteLeavesSessionOpen(t *testing.T) {
	store := &fakeStore{completeErr: errors.New("status write failed")}
	reg, _ := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})

	require.Error(t, s.MarkComplete(context.Background()))
	assert.Equal(t, []string{"save", "complete"}, store.calls)
	assert.False(t, s.Completed())
}

func TestSession_LogExtractionUpdatesOnlyOnChange(t *testing.T) {
	store := &fakeStore{}
	reg, clock := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})
	ctx := context.Background()

	assert.Equal(t, 1, s.IngestLog(ctx, "cmi.location=slide_3", time.Time{}))
	clock.Advance(time.Second)
	assert.Equal(t, 1, store.saveCount())

	s.IngestLog(ctx, "cmi.location=slide_3", time.Time{})
	clock.Advance(time.Second)
	assert.Equal(t, 1, store.saveCount(), "unchanged value schedules nothing")

	s.IngestLog(ctx, "cmi.session_time=PT4S", time.Time{})
	s.IngestLog(ctx, "cmi.session_time=PT4S", time.Time{})
	snap := s.Snapshot()
	assert.Equal(t, 4*time.Second, snap.SessionDuration(), "repeated log line is not re-added")

	s.IngestLog(ctx, "Overall Result: Progress: 100%", time.Time{})
	assert.True(t, s.Completed())
}

func TestSession_LogExtractionCanBeDisabled(t *testing.T) {
	reg, _ := newTestRegistry(&fakeStore{})
	s := launch(t, reg, LaunchRequest{DisableLogExtraction: true})

	assert.Equal(t, 0, s.IngestLog(context.Background(), "cmi.location=slide_3", time.Time{}))
	assert.Empty(t, s.Snapshot().Location)
}

func TestSession_UnloadFlushesPendingChanges(t *testing.T) {
	store := &fakeStore{}
	reg, clock := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})
	call(t, s, "Initialize", "")
	call(t, s, "SetValue", "cmi.suspend_data", "progress:30")

	require.NoError(t, reg.Unload(context.Background(), s.ID()))
	assert.Equal(t, 1, store.saveCount())
	assert.Equal(t, 30, store.lastSave().Percentage)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, store.saveCount(), "debounced commit was cancelled")

	_, err := reg.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
