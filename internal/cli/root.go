package cli

import (
	"encoding/json"
	"io"

	"github.com/alexanderramin/coursegate/internal/cli/formatter"
	"github.com/alexanderramin/coursegate/internal/config"
	"github.com/alexanderramin/coursegate/internal/logger"
	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/alexanderramin/coursegate/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and settings CLI commands run against.
type App struct {
	Config config.Config
	Log    *logger.Logger

	Progress service.ProgressService
	Reports  service.ReportService
	Gates    service.GateService
	Catalog  service.CatalogService

	// Cache holds uncommitted SCORM state between launches. Nil disables it.
	Cache scorm.SnapshotCache

	// IsInteractive reports whether stdout is a terminal; colors are turned
	// off when it is not.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "coursegate" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.Log == nil {
		app.Log = logger.NewNop()
	}

	root := &cobra.Command{
		Use:           "coursegate",
		Short:         "Learning progress tracking and completion gating",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if app.IsInteractive != nil && !app.IsInteractive() {
				formatter.DisableColor()
			}
		},
	}

	root.AddCommand(
		newServeCmd(app),
		newImportCmd(app),
		newProgressCmd(app),
		newCheckCmd(app),
		newGateCmd(app),
		newReplayCmd(app),
	)

	return root
}

// learnerFlags are the identity flags shared by the learner-scoped commands.
type learnerFlags struct {
	userID   string
	clientID string
	courseID string
	asJSON   bool
}

func (f *learnerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.userID, "user", "", "Learner user ID")
	cmd.Flags().StringVar(&f.clientID, "client", "", "Tenant client ID")
	cmd.Flags().StringVar(&f.courseID, "course", "", "Course ID")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print JSON instead of a formatted view")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("course")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
