package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/httpapi/middleware"
	"github.com/alexanderramin/coursegate/internal/httpapi/response"
	"github.com/gin-gonic/gin"
)

// ProgressUseCases is what the progress endpoints need from the service
// layer.
type ProgressUseCases interface {
	app.UpdateProgressUseCase
	app.MarkCompleteUseCase
	app.ResumeDataUseCase
	app.CheckProgressUseCase
}

type ProgressHandler struct {
	progress ProgressUseCases
}

func NewProgressHandler(progress ProgressUseCases) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// serializedProgress accepts the progress either as a JSON string holding
// the serialized object or as the object itself.
type serializedProgress string

func (s *serializedProgress) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = serializedProgress(str)
		return nil
	}
	*s = serializedProgress(raw)
	return nil
}

type updateProgressBody struct {
	CourseID           string             `json:"courseId"`
	ContentID          string             `json:"contentId"`
	ContentType        domain.ContentType `json:"contentType"`
	SerializedProgress serializedProgress `json:"serializedProgress"`
	PrerequisiteID     string             `json:"prerequisiteId"`
	PackageID          string             `json:"packageId"`
	At                 *time.Time         `json:"at"`
}

// POST /api/progress/update
func (h *ProgressHandler) Update(c *gin.Context) {
	var body updateProgressBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	err := h.progress.Update(c.Request.Context(), app.UpdateProgressRequest{
		Identity:           middleware.IdentityFrom(c),
		CourseID:           body.CourseID,
		ContentID:          body.ContentID,
		ContentType:        body.ContentType,
		SerializedProgress: string(body.SerializedProgress),
		PrerequisiteID:     body.PrerequisiteID,
		PackageID:          body.PackageID,
		At:                 body.At,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, "progress updated")
}

type markCompleteBody struct {
	CourseID     string             `json:"courseId"`
	ContentID    string             `json:"contentId"`
	ModuleID     string             `json:"moduleId"`
	ContentType  domain.ContentType `json:"contentType"`
	LessonStatus string             `json:"lessonStatus"`
	PackageID    string             `json:"packageId"`
}

// POST /api/progress/mark-complete
func (h *ProgressHandler) MarkComplete(c *gin.Context) {
	var body markCompleteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	req := app.NewMarkCompleteRequest()
	req.Identity = middleware.IdentityFrom(c)
	req.CourseID = body.CourseID
	req.ContentID = body.ContentID
	req.ModuleID = body.ModuleID
	req.PackageID = body.PackageID
	if body.ContentType != "" {
		req.ContentType = body.ContentType
	}
	if body.LessonStatus != "" {
		req.LessonStatus = body.LessonStatus
	}
	if err := h.progress.MarkComplete(c.Request.Context(), req); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, "")
}

// GET /api/progress/resume-data?courseId=&contentId=
func (h *ProgressHandler) ResumeData(c *gin.Context) {
	data, err := h.progress.ResumeData(c.Request.Context(), app.ContentRequest{
		Identity:  middleware.IdentityFrom(c),
		CourseID:  c.Query("courseId"),
		ContentID: c.Query("contentId"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondData(c, data)
}

type contentBody struct {
	CourseID  string `json:"courseId"`
	ContentID string `json:"contentId"`
}

// POST /api/progress/check-progress
func (h *ProgressHandler) CheckProgress(c *gin.Context) {
	var body contentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.progress.CheckProgress(c.Request.Context(), app.ContentRequest{
		Identity:  middleware.IdentityFrom(c),
		CourseID:  body.CourseID,
		ContentID: body.ContentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondData(c, res)
}
