package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"punch/internal/period"
)

func newLogCommand() *cobra.Command {
	var (
		description string
		dayOpt      string
		timeOpt     string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "log PROJECT MINUTES",
		Short: "Log time retrospectively",
		Long: `Log a block of time against a project without running a session.
Manual entries keep their exact duration; rounding never applies. The entry
defaults to today, or use --date (and optionally --time) for another day.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("duration must be a positive number of minutes, got %q", args[1])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.flush()

			entry, err := a.tracker.Log(args[0], minutes, description, dayOpt, timeOpt)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(entry)
			}

			fmt.Printf("Logged %s to %s on %s\n",
				period.FormatDuration(entry.Minutes), entry.Project, entry.Date)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "message", "m", "", "description for the entry")
	cmd.Flags().StringVar(&dayOpt, "date", "", "entry date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&timeOpt, "time", "", "entry time (HH:MM, 24-hour)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
