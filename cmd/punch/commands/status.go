package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"punch/internal/period"
	"punch/internal/track"
)

func newStatusCommand() *cobra.Command {
	var (
		quiet   bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active session, if any",
		Long: `Show the current tracking state without changing anything. With
--quiet, errors and the idle state produce no output at all, which makes the
command safe to embed in a shell prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := currentStatus()
			if quiet {
				// Prompt integration mode: swallow everything, print at most
				// one short line.
				if err != nil || !status.Tracking {
					return nil
				}
				fmt.Printf("%s %s\n", status.Project, period.FormatDuration(status.ElapsedMinutes))
				return nil
			}
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(status)
			}

			if !status.Tracking {
				fmt.Println("No active session")
				return nil
			}
			fmt.Printf("Tracking %s for %s (since %s)\n",
				status.Project,
				period.FormatDuration(status.ElapsedMinutes),
				status.StartedAt.Format("15:04"))
			if status.Description != "" {
				fmt.Printf("  %s\n", status.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no output when idle; never error")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

// currentStatus never returns a nil status alongside a nil error.
func currentStatus() (*track.Status, error) {
	a, err := newApp()
	if err != nil {
		return &track.Status{}, err
	}
	s, err := a.tracker.Status()
	if err != nil {
		return &track.Status{}, err
	}
	return s, nil
}
