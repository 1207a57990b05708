package httpapi

import (
	"github.com/alexanderramin/coursegate/internal/httpapi/handlers"
	"github.com/alexanderramin/coursegate/internal/httpapi/middleware"
	"github.com/alexanderramin/coursegate/internal/logger"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler   *handlers.HealthHandler
	ProgressHandler *handlers.ProgressHandler
	CourseHandler   *handlers.CourseHandler
	ScormHandler    *handlers.ScormHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	api.Use(middleware.RequireIdentity())
	{
		// Progress endpoints called by content players
		if cfg.ProgressHandler != nil {
			api.POST("/progress/update", cfg.ProgressHandler.Update)
			api.POST("/progress/mark-complete", cfg.ProgressHandler.MarkComplete)
			api.GET("/progress/resume-data", cfg.ProgressHandler.ResumeData)
			api.POST("/progress/check-progress", cfg.ProgressHandler.CheckProgress)
		}

		// Course rollup and gating
		if cfg.CourseHandler != nil {
			api.GET("/courses/:courseId/progress", cfg.CourseHandler.Progress)
			api.GET("/courses/:courseId/gate", cfg.CourseHandler.Gate)
		}

		// SCORM runtime bridge
		if cfg.ScormHandler != nil {
			api.POST("/scorm/sessions", cfg.ScormHandler.Launch)
			api.GET("/scorm/sessions/:id", cfg.ScormHandler.Get)
			api.POST("/scorm/sessions/:id/api", cfg.ScormHandler.API)
			api.POST("/scorm/sessions/:id/log", cfg.ScormHandler.Log)
			api.GET("/scorm/sessions/:id/commands", cfg.ScormHandler.Commands)
			api.POST("/scorm/sessions/:id/actions/:action", cfg.ScormHandler.Action)
			api.POST("/scorm/sessions/:id/unload", cfg.ScormHandler.Unload)
		}
	}

	return r
}
