package scorm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_LifecycleErrors2004(t *testing.T) {
	reg, _ := newTestRegistry(&fakeStore{})
	s := launch(t, reg, LaunchRequest{})

	assert.Equal(t, "", call(t, s, "GetValue", "cmi.location"))
	assert.Equal(t, "122", call(t, s, "GetLastError"))
	assert.Equal(t, "false", call(t, s, "SetValue", "cmi.location", "x"))
	assert.Equal(t, "132", call(t, s, "GetLastError"))
	assert.Equal(t, "false", call(t, s, "Commit", ""))
	assert.Equal(t, "142", call(t, s, "GetLastError"))

	assert.Equal(t, "true", call(t, s, "Initialize", ""))
	assert.Equal(t, "0", call(t, s, "GetLastError"))
	assert.Equal(t, "false", call(t, s, "Initialize", ""))
	assert.Equal(t, "103", call(t, s, "GetLastError"))

	assert.Equal(t, "true", call(t, s, "Terminate", ""))
	assert.Equal(t, "false", call(t, s, "SetValue", "cmi.location", "x"))
	assert.Equal(t, "133", call(t, s, "GetLastError"))
	assert.Equal(t, "false", call(t, s, "Initialize", ""))
	assert.Equal(t, "104", call(t, s, "GetLastError"))
}

func TestAPI_LifecycleErrors12(t *testing.T) {
	reg, _ := newTestRegistry(&fakeStore{})
	s := launch(t, reg, LaunchRequest{})

	call(t, s, "LMSGetValue", "cmi.core.lesson_location")
	assert.Equal(t, "301", call(t, s, "LMSGetLastError"))
	assert.Equal(t, "Not initialized", call(t, s, "LMSGetErrorString", "301"))

	call(t, s, "LMSInitialize", "")
	assert.Equal(t, "false", call(t, s, "LMSSetValue", "cmi.core.student_id", "someone"))
	assert.Equal(t, "403", call(t, s, "LMSGetLastError"))
	assert.Equal(t, "false", call(t, s, "LMSSetValue", "cmi.core.session_time", "ten minutes"))
	assert.Equal(t, "405", call(t, s, "LMSGetLastError"))
	assert.Equal(t, "u1", call(t, s, "LMSGetValue", "cmi.core.student_id"))
	assert.Equal(t, "0", call(t, s, "LMSGetLastError"))
}

func TestAPI_DataModelErrors(t *testing.T) {
	reg, _ := newTestRegistry(&fakeStore{})
	s := launch(t, reg, LaunchRequest{})
	call(t, s, "Initialize", "")

	call(t, s, "GetValue", "cmi.session_time")
	assert.Equal(t, "405", call(t, s, "GetLastError"))

	call(t, s, "GetValue", "cmi.interactions.0.id")
	assert.Equal(t, "403", call(t, s, "GetLastError"))

	call(t, s, "GetValue", "nonsense")
	assert.Equal(t, "401", call(t, s, "GetLastError"))
	assert.Equal(t, "nonsense is not a data model element", call(t, s, "GetDiagnostic", ""))
	assert.Equal(t, "Undefined Data Model Element", call(t, s, "GetErrorString", "401"))

	assert.Equal(t, "false", call(t, s, "SetValue", "cmi.progress_measure", "1.5"))
	assert.Equal(t, "406", call(t, s, "GetLastError"))

	assert.Equal(t, "true", call(t, s, "SetValue", "cmi.interactions.0.id", "q1"))
	assert.Equal(t, "q1", call(t, s, "GetValue", "cmi.interactions.0.id"))
}

func TestAPI_UnknownMethod(t *testing.T) {
	reg, _ := newTestRegistry(&fakeStore{})
	s := launch(t, reg, LaunchRequest{})

	_, err := s.Call(context.Background(), "LMSExplode")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestAPI_TerminateFlushes(t *testing.T) {
	store := &fakeStore{}
	reg, _ := newTestRegistry(store)
	s := launch(t, reg, LaunchRequest{})
	call(t, s, "LMSInitialize", "")
	call(t, s, "LMSSetValue", "cmi.core.lesson_location", "12")

	assert.Equal(t, "true", call(t, s, "LMSFinish", ""))
	require.Equal(t, 1, store.saveCount())
	assert.Equal(t, 12, store.lastSave().Percentage)
}
