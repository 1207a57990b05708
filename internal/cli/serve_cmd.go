package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexanderramin/coursegate/internal/httpapi"
	"github.com/alexanderramin/coursegate/internal/httpapi/handlers"
	"github.com/alexanderramin/coursegate/internal/logger"
	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the progress API and SCORM runtime bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Config.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, app, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from COURSEGATE_ADDR)")

	return cmd
}

// serve runs the HTTP server and the session housekeeping until ctx ends,
// then flushes every live session.
func serve(ctx context.Context, app *App, addr string) error {
	if app.Log == nil {
		app.Log = logger.NewNop()
	}
	switch strings.ToLower(app.Config.LogMode) {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	}

	sessions := scorm.NewRegistry(app.Progress, scorm.RegistryConfig{
		AutosaveInterval: app.Config.AutosaveInterval,
		IdleTimeout:      app.Config.SessionIdleTimeout,
		Cache:            app.Cache,
		Log:              app.Log.With("component", "scorm"),
	})
	if err := sessions.Start(); err != nil {
		return fmt.Errorf("starting session housekeeping: %w", err)
	}

	server := httpapi.NewServer(addr, httpapi.RouterConfig{
		Log:             app.Log.With("component", "http"),
		HealthHandler:   handlers.NewHealthHandler(),
		ProgressHandler: handlers.NewProgressHandler(app.Progress),
		CourseHandler:   handlers.NewCourseHandler(app.Reports, app.Gates),
		ScormHandler:    handlers.NewScormHandler(sessions, app.Log),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Log.Info("coursegate listening", "addr", addr)
		return server.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		sessions.Stop(context.Background())
		app.Log.Info("scorm sessions flushed")
		return nil
	})
	return g.Wait()
}
