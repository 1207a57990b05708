package handlers

import (
	"fmt"
	"time"

	"github.com/alexanderramin/coursegate/internal/httpapi/middleware"
	"github.com/alexanderramin/coursegate/internal/httpapi/response"
	"github.com/alexanderramin/coursegate/internal/logger"
	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/gin-gonic/gin"
)

// ScormHandler exposes the runtime bridge to the page hosting a package.
// The page forwards every runtime API call, posts the package's debug
// output, and polls for navigation commands.
type ScormHandler struct {
	sessions *scorm.Registry
	log      *logger.Logger
}

func NewScormHandler(sessions *scorm.Registry, log *logger.Logger) *ScormHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ScormHandler{sessions: sessions, log: log.With("handler", "scorm")}
}

type launchBody struct {
	CourseID             string `json:"courseId"`
	ContentID            string `json:"contentId"`
	PackageID            string `json:"packageId"`
	ModuleID             string `json:"moduleId"`
	HookFunction         string `json:"hookFunction"`
	ResumeEvent          string `json:"resumeEvent"`
	LaunchURL            string `json:"launchUrl"`
	LocationParam        string `json:"locationParam"`
	DisableLogExtraction bool   `json:"disableLogExtraction"`
}

type sessionView struct {
	SessionID   string          `json:"sessionId"`
	State       string          `json:"state"`
	Completed   bool            `json:"completed"`
	ResumePoint *scorm.Snapshot `json:"resumePoint"`
}

func viewOf(s *scorm.Session) sessionView {
	return sessionView{
		SessionID:   s.ID(),
		State:       s.State().String(),
		Completed:   s.Completed(),
		ResumePoint: s.ResumePoint(),
	}
}

// POST /api/scorm/sessions
func (h *ScormHandler) Launch(c *gin.Context) {
	var body launchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	id := middleware.IdentityFrom(c)
	s, err := h.sessions.Launch(c.Request.Context(), scorm.LaunchRequest{
		Target: scorm.Target{
			UserID:    id.UserID,
			ClientID:  id.ClientID,
			CourseID:  body.CourseID,
			ContentID: body.ContentID,
			PackageID: body.PackageID,
			ModuleID:  body.ModuleID,
		},
		HookFunction:         body.HookFunction,
		ResumeEvent:          body.ResumeEvent,
		LaunchURL:            body.LaunchURL,
		LocationParam:        body.LocationParam,
		DisableLogExtraction: body.DisableLogExtraction,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondData(c, viewOf(s))
}

// session returns the caller's session. A session owned by another learner
// is reported as not found.
func (h *ScormHandler) session(c *gin.Context) (*scorm.Session, bool) {
	sid := c.Param("id")
	s, err := h.sessions.Get(sid)
	if err == nil {
		id := middleware.IdentityFrom(c)
		t := s.Target()
		if t.UserID != id.UserID || t.ClientID != id.ClientID {
			err = fmt.Errorf("session %s: %w", sid, scorm.ErrSessionNotFound)
		}
	}
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return s, true
}

// GET /api/scorm/sessions/:id
func (h *ScormHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.RespondData(c, viewOf(s))
}

type apiCallBody struct {
	Method string   `json:"method"`
	Args   []string `json:"args"`
}

// POST /api/scorm/sessions/:id/api
func (h *ScormHandler) API(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body apiCallBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := s.Call(c.Request.Context(), body.Method, body.Args...)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondData(c, gin.H{"result": result})
}

type logBody struct {
	Lines []string   `json:"lines"`
	Line  string     `json:"line"`
	At    *time.Time `json:"at"`
}

// POST /api/scorm/sessions/:id/log
func (h *ScormHandler) Log(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body logBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	var at time.Time
	if body.At != nil {
		at = *body.At
	}
	lines := body.Lines
	if body.Line != "" {
		lines = append(lines, body.Line)
	}
	extracted := 0
	for _, line := range lines {
		extracted += s.IngestLog(c.Request.Context(), line, at)
	}
	response.RespondData(c, gin.H{"signals": extracted})
}

// GET /api/scorm/sessions/:id/commands
func (h *ScormHandler) Commands(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	cmds := s.DrainCommands()
	if cmds == nil {
		cmds = []scorm.Command{}
	}
	response.RespondData(c, cmds)
}

type actionBody struct {
	Location string `json:"location"`
}

// POST /api/scorm/sessions/:id/actions/:action
func (h *ScormHandler) Action(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body actionBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respondBindError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	switch action := c.Param("action"); action {
	case "resume":
		res, err := s.Resume()
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response.RespondData(c, res)
	case "quick-jump":
		cmd, err := s.QuickJump(body.Location)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response.RespondData(c, cmd)
	case "manual-resume":
		response.RespondData(c, s.ManualResume())
	case "start-over":
		response.RespondData(c, s.StartOver())
	case "mark-complete":
		if err := s.MarkComplete(ctx); err != nil {
			respondServiceError(c, err)
			return
		}
		response.RespondData(c, viewOf(s))
	default:
		respondServiceError(c, fmt.Errorf("%w: %s", scorm.ErrUnknownAction, action))
	}
}

// POST /api/scorm/sessions/:id/unload
//
// The flush is best effort: the page is going away and cannot retry, so a
// failed save is logged and the session is still released.
func (h *ScormHandler) Unload(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.sessions.Unload(c.Request.Context(), s.ID()); err != nil {
		h.log.Warn("unload flush failed", "session", s.ID(), "error", err)
	}
	response.RespondSuccess(c, "")
}
