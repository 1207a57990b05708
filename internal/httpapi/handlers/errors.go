package handlers

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/httpapi/response"
	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps domain errors onto HTTP statuses. Anything it
// does not recognize is a 500.
func respondServiceError(c *gin.Context, err error) {
	var pe *app.ProgressError
	switch {
	case errors.As(err, &pe):
		response.RespondError(c, http.StatusBadRequest, string(pe.Code), err)
	case errors.Is(err, scorm.ErrSessionNotFound):
		response.RespondError(c, http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, scorm.ErrSessionCompleted):
		response.RespondError(c, http.StatusConflict, "session_completed", err)
	case errors.Is(err, scorm.ErrNothingToResume):
		response.RespondError(c, http.StatusConflict, "nothing_to_resume", err)
	case errors.Is(err, scorm.ErrInvalidLaunch),
		errors.Is(err, scorm.ErrUnknownAction),
		errors.Is(err, scorm.ErrUnknownMethod):
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}

func respondBindError(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, string(app.ProgressErrInvalidRequest), err)
}
