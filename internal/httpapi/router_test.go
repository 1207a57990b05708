package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/coursegate/internal/gate"
	"github.com/alexanderramin/coursegate/internal/httpapi/handlers"
	"github.com/alexanderramin/coursegate/internal/httpapi/middleware"
	"github.com/alexanderramin/coursegate/internal/importer"
	"github.com/alexanderramin/coursegate/internal/progress"
	"github.com/alexanderramin/coursegate/internal/repository"
	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/alexanderramin/coursegate/internal/service"
	"github.com/alexanderramin/coursegate/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
  "course": {"id": "course-1", "title": "Safety Basics"},
  "modules": [{"ref": "m1", "id": "mod-1", "title": "Orientation", "order": 1}],
  "items": [
    {"module_ref": "m1", "join_id": "vid-1", "type": "video", "title": "Welcome", "order": 1},
    {"module_ref": "m1", "join_id": "pkg-join", "source_id": "pkg-1", "type": "scorm", "title": "Walkthrough", "order": 2}
  ],
  "requirements": [
    {"phase": "pre", "type": "assessment", "target_id": "entry-quiz"},
    {"phase": "post", "type": "survey", "target_id": "exit-survey"}
  ],
  "attempts": [
    {"assessment_id": "entry-quiz", "user_id": "user-1", "passed": true, "attempted_at": "2026-03-01T10:00:00Z"}
  ]
}`

type env struct {
	engine   *gin.Engine
	sessions *scorm.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	records := repository.NewSQLiteProgressRepo(database)
	content := repository.NewSQLiteContentRepo(database)
	attempts := repository.NewSQLiteAttemptRepo(database)
	submissions := repository.NewSQLiteSubmissionRepo(database)
	registry := progress.NewDefaultRegistry(records, attempts, submissions, progress.Options{})

	progressSvc := service.NewProgressService(uow, records, content, registry, nil)
	reports := service.NewReportService(content, registry)
	gates := service.NewGateService(reports, repository.NewSQLiteRequirementRepo(database), gate.NewChecker(attempts, submissions))

	schema, err := importer.ParseCatalogSchema([]byte(catalogJSON))
	require.NoError(t, err)
	require.Empty(t, importer.ValidateCatalogSchema(schema))
	_, err = service.NewCatalogService(uow).Import(context.Background(), importer.Convert(schema))
	require.NoError(t, err)

	clock := scorm.NewManualClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	sessions := scorm.NewRegistry(progressSvc, scorm.RegistryConfig{Clock: clock})

	engine := NewRouter(RouterConfig{
		HealthHandler:   handlers.NewHealthHandler(),
		ProgressHandler: handlers.NewProgressHandler(progressSvc),
		CourseHandler:   handlers.NewCourseHandler(reports, gates),
		ScormHandler:    handlers.NewScormHandler(sessions, nil),
	})
	return &env{engine: engine, sessions: sessions}
}

type reply struct {
	Code    int
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (e *env) do(t *testing.T, method, path, user string, body any) reply {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(middleware.HeaderUserID, user)
		req.Header.Set(middleware.HeaderClientID, "client-1")
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	out := reply{Code: rec.Code}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthcheck(t *testing.T) {
	e := newEnv(t)
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAPI_RequiresIdentity(t *testing.T) {
	e := newEnv(t)
	r := e.do(t, http.MethodPost, "/api/progress/check-progress", "", map[string]string{"courseId": "course-1", "contentId": "vid-1"})
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, "unauthorized", r.Error.Code)
}

func TestProgress_UpdateAndCheck(t *testing.T) {
	e := newEnv(t)

	r := e.do(t, http.MethodPost, "/api/progress/update", "user-1", map[string]any{
		"courseId":           "course-1",
		"contentId":          "vid-1",
		"contentType":        "video",
		"serializedProgress": `{"percentage":92}`,
	})
	require.Equal(t, http.StatusOK, r.Code, r.Error.Message)
	assert.True(t, r.Success)

	r = e.do(t, http.MethodPost, "/api/progress/check-progress", "user-1", map[string]string{"courseId": "course-1", "contentId": "vid-1"})
	require.Equal(t, http.StatusOK, r.Code)
	got := decode[map[string]any](t, r.Data)
	assert.Equal(t, "completed", got["lessonStatus"])
	assert.EqualValues(t, 92, got["percentage"])
	assert.Equal(t, true, got["completed"])

	// Another learner sees nothing.
	r = e.do(t, http.MethodPost, "/api/progress/check-progress", "user-2", map[string]string{"courseId": "course-1", "contentId": "vid-1"})
	got = decode[map[string]any](t, r.Data)
	assert.Equal(t, "not attempted", got["lessonStatus"])
	assert.EqualValues(t, 0, got["percentage"])
}

func TestProgress_UpdateAcceptsObjectPayload(t *testing.T) {
	e := newEnv(t)
	r := e.do(t, http.MethodPost, "/api/progress/update", "user-1", map[string]any{
		"courseId":           "course-1",
		"contentId":          "vid-1",
		"contentType":        "video",
		"serializedProgress": map[string]any{"percentage": 40},
	})
	require.Equal(t, http.StatusOK, r.Code, r.Error.Message)

	r = e.do(t, http.MethodPost, "/api/progress/check-progress", "user-1", map[string]string{"courseId": "course-1", "contentId": "vid-1"})
	got := decode[map[string]any](t, r.Data)
	assert.EqualValues(t, 40, got["percentage"])
	assert.Equal(t, "incomplete", got["lessonStatus"])
}

func TestProgress_InvalidRequest(t *testing.T) {
	e := newEnv(t)
	r := e.do(t, http.MethodPost, "/api/progress/update", "user-1", map[string]any{"contentId": "vid-1", "contentType": "video"})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "INVALID_REQUEST", r.Error.Code)
	assert.False(t, r.Success)

	r = e.do(t, http.MethodPost, "/api/progress/mark-complete", "user-1", map[string]any{
		"courseId": "course-1", "contentId": "pkg-1", "lessonStatus": "incomplete",
	})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "INVALID_REQUEST", r.Error.Code)
}

func TestProgress_ResumeDataIsNullWithoutState(t *testing.T) {
	e := newEnv(t)
	r := e.do(t, http.MethodGet, "/api/progress/resume-data?courseId=course-1&contentId=pkg-1", "user-1", nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.True(t, r.Success)
	assert.Equal(t, "null", string(r.Data))
}

func TestCourses_ProgressAndGate(t *testing.T) {
	e := newEnv(t)
	req := map[string]any{"courseId": "course-1", "contentId": "vid-1", "contentType": "video"}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/progress/mark-complete", "user-1", req).Code)

	r := e.do(t, http.MethodGet, "/api/courses/course-1/progress", "user-1", nil)
	require.Equal(t, http.StatusOK, r.Code)
	report := decode[struct {
		Percentage int  `json:"percentage"`
		Completed  bool `json:"completed"`
		Modules    []struct {
			Percentage int `json:"percentage"`
		} `json:"modules"`
	}](t, r.Data)
	require.Len(t, report.Modules, 1)
	assert.Equal(t, 50, report.Modules[0].Percentage)
	assert.Equal(t, 50, report.Percentage)
	assert.False(t, report.Completed)

	r = e.do(t, http.MethodGet, "/api/courses/course-1/gate", "user-1", nil)
	require.Equal(t, http.StatusOK, r.Code)
	decision := decode[map[string]any](t, r.Data)
	assert.Equal(t, true, decision["prerequisitesSatisfied"])
	assert.Equal(t, false, decision["postrequisitesUnlocked"])
	assert.Equal(t, false, decision["courseCompleted"])
}

func TestScorm_SessionOverHTTP(t *testing.T) {
	e := newEnv(t)
	launch := map[string]any{"courseId": "course-1", "contentId": "pkg-join", "packageId": "pkg-1", "hookFunction": "goToSlide"}

	r := e.do(t, http.MethodPost, "/api/scorm/sessions", "user-1", launch)
	require.Equal(t, http.StatusOK, r.Code, r.Error.Message)
	view := decode[struct {
		SessionID   string          `json:"sessionId"`
		State       string          `json:"state"`
		ResumePoint *scorm.Snapshot `json:"resumePoint"`
	}](t, r.Data)
	assert.Equal(t, "ready", view.State)
	assert.Nil(t, view.ResumePoint)
	base := "/api/scorm/sessions/" + view.SessionID

	call := func(method string, args ...string) string {
		t.Helper()
		r := e.do(t, http.MethodPost, base+"/api", "user-1", map[string]any{"method": method, "args": args})
		require.Equal(t, http.StatusOK, r.Code, r.Error.Message)
		return decode[map[string]string](t, r.Data)["result"]
	}
	assert.Equal(t, "true", call("Initialize", ""))
	assert.Equal(t, "true", call("SetValue", "cmi.location", "slide_3"))
	assert.Equal(t, "true", call("SetValue", "cmi.progress_measure", "0.4"))
	assert.Equal(t, "true", call("Commit", ""))
	assert.Equal(t, "slide_3", call("GetValue", "cmi.location"))

	r = e.do(t, http.MethodPost, base+"/api", "user-1", map[string]any{"method": "LMSBogus"})
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = e.do(t, http.MethodPost, "/api/progress/check-progress", "user-1", map[string]string{"courseId": "course-1", "contentId": "pkg-join"})
	got := decode[map[string]any](t, r.Data)
	assert.EqualValues(t, 40, got["percentage"])
	assert.Equal(t, "incomplete", got["lessonStatus"])

	r = e.do(t, http.MethodGet, "/api/progress/resume-data?courseId=course-1&contentId=pkg-join", "user-1", nil)
	resume := decode[map[string]string](t, r.Data)
	assert.Equal(t, "slide_3", resume["location"])

	// Another learner cannot reach the session.
	r = e.do(t, http.MethodGet, base, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.Equal(t, "session_not_found", r.Error.Code)

	r = e.do(t, http.MethodPost, base+"/unload", "user-1", nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, 0, e.sessions.Len())

	// A relaunch resumes from the saved position through the hook.
	r = e.do(t, http.MethodPost, "/api/scorm/sessions", "user-1", launch)
	require.Equal(t, http.StatusOK, r.Code)
	view = decode[struct {
		SessionID   string          `json:"sessionId"`
		State       string          `json:"state"`
		ResumePoint *scorm.Snapshot `json:"resumePoint"`
	}](t, r.Data)
	assert.Equal(t, "resuming", view.State)
	require.NotNil(t, view.ResumePoint)
	assert.Equal(t, "slide_3", view.ResumePoint.Location)
	base = "/api/scorm/sessions/" + view.SessionID

	r = e.do(t, http.MethodPost, base+"/actions/resume", "user-1", nil)
	require.Equal(t, http.StatusOK, r.Code, r.Error.Message)
	res := decode[scorm.ResumeResult](t, r.Data)
	assert.True(t, res.Applied)
	assert.Equal(t, "hook", res.Strategy)

	r = e.do(t, http.MethodGet, base+"/commands", "user-1", nil)
	cmds := decode[[]scorm.Command](t, r.Data)
	require.Len(t, cmds, 1)
	assert.Equal(t, scorm.CommandCallHook, cmds[0].Kind)
	assert.Equal(t, "slide_3", cmds[0].Location)

	r = e.do(t, http.MethodGet, base+"/commands", "user-1", nil)
	assert.Equal(t, "[]", string(r.Data))

	r = e.do(t, http.MethodPost, base+"/actions/teleport", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = e.do(t, http.MethodPost, base+"/actions/mark-complete", "user-1", nil)
	require.Equal(t, http.StatusOK, r.Code, r.Error.Message)
	r = e.do(t, http.MethodPost, base+"/actions/quick-jump", "user-1", map[string]string{"location": "slide_1"})
	assert.Equal(t, http.StatusConflict, r.Code)
	assert.Equal(t, "session_completed", r.Error.Code)

	r = e.do(t, http.MethodPost, "/api/progress/check-progress", "user-1", map[string]string{"courseId": "course-1", "contentId": "pkg-1"})
	got = decode[map[string]any](t, r.Data)
	assert.Equal(t, "completed", got["lessonStatus"])
	assert.EqualValues(t, 100, got["percentage"])
}

func TestScorm_LogIngestion(t *testing.T) {
	e := newEnv(t)
	r := e.do(t, http.MethodPost, "/api/scorm/sessions", "user-1", map[string]any{"courseId": "course-1", "contentId": "pkg-join", "packageId": "pkg-1"})
	require.Equal(t, http.StatusOK, r.Code)
	id := decode[map[string]any](t, r.Data)["sessionId"].(string)

	r = e.do(t, http.MethodPost, "/api/scorm/sessions/"+id+"/log", "user-1", map[string]any{
		"lines": []string{"nothing to see", "cmi.location=slide_7"},
	})
	require.Equal(t, http.StatusOK, r.Code)
	s, err := e.sessions.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "slide_7", s.Snapshot().Location)
}
