package handlers

import (
	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/httpapi/middleware"
	"github.com/alexanderramin/coursegate/internal/httpapi/response"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	reports app.CourseReportUseCase
	gates   app.GateUseCase
}

func NewCourseHandler(reports app.CourseReportUseCase, gates app.GateUseCase) *CourseHandler {
	return &CourseHandler{reports: reports, gates: gates}
}

func courseRequest(c *gin.Context) app.CourseRequest {
	return app.CourseRequest{Identity: middleware.IdentityFrom(c), CourseID: c.Param("courseId")}
}

// GET /api/courses/:courseId/progress
func (h *CourseHandler) Progress(c *gin.Context) {
	report, err := h.reports.Report(c.Request.Context(), courseRequest(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondData(c, report)
}

// GET /api/courses/:courseId/gate
func (h *CourseHandler) Gate(c *gin.Context) {
	decision, err := h.gates.Decide(c.Request.Context(), courseRequest(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondData(c, decision)
}
