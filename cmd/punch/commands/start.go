package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"punch/internal/period"
)

func newStartCommand() *cobra.Command {
	var (
		description string
		noRound     bool
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "start PROJECT",
		Short: "Start tracking time for a project",
		Long: `Start a tracking session for a project. Project names may use '/' to
form a hierarchy (e.g. "business/quote"). If a session is already running it
is stopped and logged first, so switching projects is a single command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.flush()

			res, err := a.tracker.Start(args[0], description, noRound)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(res)
			}

			if prev := res.Stopped; prev != nil {
				if prev.Recorded {
					fmt.Printf("Stopped %s: %s\n", prev.Project, period.FormatDuration(prev.Minutes))
				} else {
					fmt.Printf("Stopped %s: too short to record (%dm)\n", prev.Project, prev.RawMinutes)
				}
			}
			fmt.Printf("Started tracking %s\n", res.Project)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "message", "m", "", "description for the session")
	cmd.Flags().BoolVar(&noRound, "no-round", false, "disable 15-minute rounding for the auto-stopped session")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
