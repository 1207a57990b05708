package cli

import (
	"fmt"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newProgressCmd(a *App) *cobra.Command {
	var f learnerFlags

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show a learner's module and course progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.Reports.Report(cmd.Context(), app.CourseRequest{
				Identity: app.Identity{UserID: f.userID, ClientID: f.clientID},
				CourseID: f.courseID,
			})
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCourseReport(report))
			return nil
		},
	}

	f.register(cmd)

	return cmd
}

func newCheckCmd(a *App) *cobra.Command {
	var f learnerFlags
	var contentID string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show a learner's progress on one content item",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.Progress.CheckProgress(cmd.Context(), app.ContentRequest{
				Identity:  app.Identity{UserID: f.userID, ClientID: f.clientID},
				CourseID:  f.courseID,
				ContentID: contentID,
			})
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCheckProgress(contentID, resp))
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&contentID, "content", "", "Content ID (module content id or package id)")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func newGateCmd(a *App) *cobra.Command {
	var f learnerFlags

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Show whether prerequisites are met and post-requisites unlocked",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.Gates.Decide(cmd.Context(), app.CourseRequest{
				Identity: app.Identity{UserID: f.userID, ClientID: f.clientID},
				CourseID: f.courseID,
			})
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGate(f.courseID, resp))
			return nil
		},
	}

	f.register(cmd)

	return cmd
}
