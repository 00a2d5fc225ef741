package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"punch/internal/period"
	"punch/internal/track"
)

func newLogsCommand() *cobra.Command {
	var (
		sessionsOnly bool
		manualOnly   bool
		withDesc     bool
		jsonOut      bool
	)

	cmd := &cobra.Command{
		Use:   "logs [PERIOD]",
		Short: "List logged entries",
		Long: `List entries for a period (day, week, month, or all; default all).
The printed index is what 'punch delete INDEX PERIOD' refers to.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionsOnly && manualOnly {
				return fmt.Errorf("--sessions and --manual are mutually exclusive")
			}
			periodArg := ""
			if len(args) > 0 {
				periodArg = args[0]
			}
			p, err := period.Parse(periodArg)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			res, err := a.tracker.Logs(p, a.store.Now(), track.LogsOptions{
				SessionsOnly:     sessionsOnly,
				ManualOnly:       manualOnly,
				WithDescriptions: withDesc,
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(res)
			}

			if len(res.Entries) == 0 {
				fmt.Printf("No entries (%s)\n", p)
				return nil
			}
			for i, e := range res.Entries {
				line := fmt.Sprintf("%3d. %s  %-30s %10s", i+1, e.Date, e.Project,
					period.FormatDuration(e.Minutes))
				if e.Description != "" {
					line += "  " + e.Description
				}
				fmt.Println(line)
			}
			fmt.Printf("     total: %s (%d entries)\n",
				period.FormatDuration(res.TotalMinutes), len(res.Entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&sessionsOnly, "sessions", false, "only entries produced by start/stop")
	cmd.Flags().BoolVar(&manualOnly, "manual", false, "only entries logged manually")
	cmd.Flags().BoolVar(&withDesc, "descriptions", false, "only entries with a description")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
