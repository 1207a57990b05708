package scorm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownMethod = errors.New("unknown runtime method")

const (
	keyLocation12       = "cmi.core.lesson_location"
	keyLocation         = "cmi.location"
	keySuspendData      = "cmi.suspend_data"
	keySessionTime12    = "cmi.core.session_time"
	keySessionTime      = "cmi.session_time"
	keyLessonStatus12   = "cmi.core.lesson_status"
	keyCompletionStatus = "cmi.completion_status"
	keySuccessStatus    = "cmi.success_status"
	keyProgressMeasure  = "cmi.progress_measure"
	keyScoreRaw12       = "cmi.core.score.raw"
	keyScoreRaw         = "cmi.score.raw"
)

// signalKeys are the data model elements that feed progress tracking.
var signalKeys = map[string]SignalKind{
	keyLocation12:       SignalLocation,
	keyLocation:         SignalLocation,
	keySuspendData:      SignalSuspendData,
	keySessionTime12:    SignalSessionTime,
	keySessionTime:      SignalSessionTime,
	keyLessonStatus12:   SignalStatus,
	keyCompletionStatus: SignalStatus,
	keySuccessStatus:    SignalStatus,
	keyProgressMeasure:  SignalProgressMeasure,
	keyScoreRaw12:       SignalScore,
	keyScoreRaw:         SignalScore,
}

var readOnlyKeys = map[string]bool{
	"cmi._version":          true,
	"cmi.core.student_id":   true,
	"cmi.learner_id":        true,
	"cmi.core.student_name": true,
	"cmi.learner_name":      true,
	"cmi.core.entry":        true,
	"cmi.entry":             true,
	"cmi.core.total_time":   true,
	"cmi.total_time":        true,
	"cmi.core.lesson_mode":  true,
	"cmi.mode":              true,
	"cmi.core.credit":       true,
	"cmi.credit":            true,
}

var writeOnlyKeys = map[string]bool{
	keySessionTime12: true,
	keySessionTime:   true,
}

type apiMethod int

const (
	methodInitialize apiMethod = iota
	methodTerminate
	methodGetValue
	methodSetValue
	methodCommit
	methodGetLastError
	methodGetErrorString
	methodGetDiagnostic
)

type methodSpec struct {
	method  apiMethod
	version Version
}

var methods = map[string]methodSpec{
	"LMSInitialize":     {methodInitialize, Version12},
	"LMSFinish":         {methodTerminate, Version12},
	"LMSGetValue":       {methodGetValue, Version12},
	"LMSSetValue":       {methodSetValue, Version12},
	"LMSCommit":         {methodCommit, Version12},
	"LMSGetLastError":   {methodGetLastError, Version12},
	"LMSGetErrorString": {methodGetErrorString, Version12},
	"LMSGetDiagnostic":  {methodGetDiagnostic, Version12},
	"Initialize":        {methodInitialize, Version2004},
	"Terminate":         {methodTerminate, Version2004},
	"GetValue":          {methodGetValue, Version2004},
	"SetValue":          {methodSetValue, Version2004},
	"Commit":            {methodCommit, Version2004},
	"GetLastError":      {methodGetLastError, Version2004},
	"GetErrorString":    {methodGetErrorString, Version2004},
	"GetDiagnostic":     {methodGetDiagnostic, Version2004},
}

const (
	apiTrue  = "true"
	apiFalse = "false"
)

// Call invokes a runtime API method by its SCORM 1.2 or 2004 name and
// returns the string result the package expects. Saves triggered by Commit
// and Terminate run after the session lock is released; their failures are
// logged and do not change the result.
func (s *Session) Call(ctx context.Context, method string, args ...string) (string, error) {
	spec, ok := methods[method]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	s.mu.Lock()
	var (
		result string
		post   []postAction
	)
	v := spec.version
	switch spec.method {
	case methodInitialize:
		result = s.initializeLocked(arg(0))
	case methodTerminate:
		result, post = s.terminateLocked(arg(0))
	case methodGetValue:
		result = s.getValueLocked(arg(0))
	case methodSetValue:
		result, post = s.setValueLocked(arg(0), arg(1))
	case methodCommit:
		result, post = s.commitLocked(arg(0))
	case methodGetLastError:
		result = strconv.Itoa(s.lastErr.code(v))
	case methodGetErrorString:
		result = errorString(v, arg(0))
	case methodGetDiagnostic:
		result = s.diagnosticLocked(v, arg(0))
	}
	s.lastActivity = s.clock.Now()
	s.mu.Unlock()

	s.run(ctx, post)
	return result, nil
}

func (s *Session) fail(e apiError, diag string) string {
	s.lastErr = e
	s.lastDiag = diag
	return apiFalse
}

func (s *Session) ok() string {
	s.lastErr = errNone
	s.lastDiag = ""
	return apiTrue
}

func (s *Session) initializeLocked(param string) string {
	switch {
	case param != "":
		return s.fail(errArgument, "Initialize takes an empty string")
	case s.terminated:
		return s.fail(errInstanceTerminated, "session already terminated")
	case s.initialized:
		return s.fail(errAlreadyInitialized, "session already initialized")
	}
	s.initialized = true
	if s.state == StateReady {
		s.state = StateInProgress
	}
	return s.ok()
}

func (s *Session) terminateLocked(param string) (string, []postAction) {
	switch {
	case param != "":
		return s.fail(errArgument, "Terminate takes an empty string"), nil
	case !s.initialized:
		return s.fail(errTerminateBeforeInit, "session not initialized"), nil
	case s.terminated:
		return s.fail(errTerminateAfterTerminate, "session already terminated"), nil
	}
	s.terminated = true
	return s.ok(), []postAction{func(ctx context.Context) { _ = s.flush(ctx, "terminate") }}
}

func (s *Session) commitLocked(param string) (string, []postAction) {
	switch {
	case param != "":
		return s.fail(errArgument, "Commit takes an empty string"), nil
	case !s.initialized:
		return s.fail(errCommitBeforeInit, "session not initialized"), nil
	case s.terminated:
		return s.fail(errCommitAfterTerminate, "session already terminated"), nil
	}
	return s.ok(), []postAction{func(ctx context.Context) { _ = s.flush(ctx, "commit") }}
}

func (s *Session) getValueLocked(key string) string {
	switch {
	case !s.initialized:
		s.fail(errGetBeforeInit, "session not initialized")
		return ""
	case s.terminated:
		s.fail(errGetAfterTerminate, "session already terminated")
		return ""
	case key == "":
		s.fail(errGetFailure, "empty element name")
		return ""
	case writeOnlyKeys[key]:
		s.fail(errWriteOnly, key+" is write only")
		return ""
	}
	if val, ok := s.table[key]; ok {
		s.ok()
		return val
	}
	if val, ok := s.derivedLocked(key); ok {
		s.ok()
		return val
	}
	if isDataModelKey(key) {
		s.fail(errNotInitialized, key+" has no value")
		return ""
	}
	s.fail(errUndefinedElement, key+" is not a data model element")
	return ""
}

func (s *Session) setValueLocked(key, value string) (string, []postAction) {
	switch {
	case !s.initialized:
		return s.fail(errSetBeforeInit, "session not initialized"), nil
	case s.terminated:
		return s.fail(errSetAfterTerminate, "session already terminated"), nil
	case key == "":
		return s.fail(errSetFailure, "empty element name"), nil
	case readOnlyKeys[key]:
		return s.fail(errReadOnly, key+" is read only"), nil
	case !isDataModelKey(key):
		return s.fail(errUndefinedElement, key+" is not a data model element"), nil
	}
	if diag := validateValue(key, value); diag != "" {
		return s.fail(errTypeMismatch, diag), nil
	}

	s.table[key] = value
	kind, tracked := signalKeys[key]
	if !tracked {
		return s.ok(), nil
	}
	post := s.applyLocked(ProgressSignal{Kind: kind, Value: value, Source: SourceAPI, At: s.clock.Now()})
	return s.ok(), post
}

func (s *Session) derivedLocked(key string) (string, bool) {
	total := s.acc.Total()
	switch key {
	case "cmi._version":
		return "1.0", true
	case "cmi.core.student_id", "cmi.learner_id":
		return s.target.UserID, true
	case "cmi.core.student_name", "cmi.learner_name":
		return "", true
	case "cmi.core.entry", "cmi.entry":
		if s.resumeFrom.HasResumePoint() {
			return "resume", true
		}
		return "ab-initio", true
	case "cmi.core.total_time":
		return FormatTimespan(total), true
	case "cmi.total_time":
		return FormatISO(total), true
	case "cmi.core.lesson_mode", "cmi.mode":
		return "normal", true
	case "cmi.core.credit", "cmi.credit":
		return "credit", true
	case keyLessonStatus12:
		switch {
		case s.completed:
			return "completed", true
		case s.resumeFrom.HasResumePoint():
			return "incomplete", true
		default:
			return "not attempted", true
		}
	case keyCompletionStatus:
		switch {
		case s.completed:
			return "completed", true
		case s.resumeFrom.HasResumePoint():
			return "incomplete", true
		default:
			return "unknown", true
		}
	}
	return "", false
}

func (s *Session) diagnosticLocked(v Version, code string) string {
	current := strconv.Itoa(s.lastErr.code(v))
	if (code == "" || code == current) && s.lastDiag != "" {
		return s.lastDiag
	}
	if code == "" {
		code = current
	}
	return errorString(v, code)
}

func isDataModelKey(key string) bool {
	return strings.HasPrefix(key, "cmi.") || strings.HasPrefix(key, "adl.")
}

func validateValue(key, value string) string {
	switch key {
	case keySessionTime12, keySessionTime:
		if _, err := ParseDuration(value); err != nil {
			return "session time must be a timespan or ISO 8601 duration"
		}
	case keyProgressMeasure:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return "progress measure must be a number between 0 and 1"
		}
	case keyScoreRaw12, keyScoreRaw:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return "score must be numeric"
		}
	}
	return ""
}
