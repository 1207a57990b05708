package cli

import (
	"fmt"

	"github.com/alexanderramin/coursegate/internal/cli/formatter"
	"github.com/alexanderramin/coursegate/internal/client"
	"github.com/alexanderramin/coursegate/internal/replay"
	"github.com/alexanderramin/coursegate/internal/scorm"
	"github.com/spf13/cobra"
)

func newReplayCmd(app *App) *cobra.Command {
	var remote bool
	var apiURL string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "replay <trace.json>",
		Short: "Replay a recorded SCORM session trace on a manual clock",
		Long: `Replay drives a bridge session through the runtime calls, log lines and
learner actions in a trace file. State is saved to the local database, or
with --remote to a running server's progress API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := replay.LoadTrace(args[0])
			if err != nil {
				return err
			}

			var store scorm.Store = app.Progress
			if remote {
				if apiURL == "" {
					apiURL = app.Config.APIURL
				}
				store = client.New(apiURL)
			}

			res, err := replay.Run(cmd.Context(), store, tr, replay.Options{
				Cache: app.Cache,
				Log:   app.Log.With("component", "replay"),
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReplay(res))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Save through a running server instead of the local database")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "Server base URL for --remote (default from COURSEGATE_API_URL)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a formatted view")

	return cmd
}
