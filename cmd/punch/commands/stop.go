package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"punch/internal/period"
)

func newStopCommand() *cobra.Command {
	var (
		noRound bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the active tracking session",
		Long: `Stop the active session and log its duration, rounded to 15-minute
buckets unless --no-round is given. Sessions that round down to zero are
discarded but the session state is still cleared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.flush()

			res, err := a.tracker.Stop(noRound)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(res)
			}

			if res.Recorded {
				fmt.Printf("Stopped %s: %s\n", res.Project, period.FormatDuration(res.Minutes))
			} else {
				fmt.Printf("Stopped %s: too short to record (%dm)\n", res.Project, res.RawMinutes)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRound, "no-round", false, "log the exact elapsed minutes")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
