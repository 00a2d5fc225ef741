package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"punch/internal/period"
)

func newSummaryCommand() *cobra.Command {
	var (
		projectFilter string
		jsonOut       bool
	)

	cmd := &cobra.Command{
		Use:   "summary [PERIOD]",
		Short: "Show time totals per project",
		Long: `Show aggregated time per project for a period (day, week, month, or
all; default all). A --project filter matches the full project path, so a
parent project includes all of its descendants.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			summary, err := a.tracker.Summary(p, a.store.Now(), projectFilter)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(summary)
			}

			if len(summary.Groups) == 0 {
				fmt.Printf("No time logged (%s)\n", p)
				return nil
			}
			fmt.Printf("Time summary (%s):\n", p)
			for _, g := range summary.Groups {
				fmt.Printf("  %-30s %10s  (%d entries)\n",
					g.Project, period.FormatDuration(g.Minutes), g.Entries)
			}
			fmt.Printf("  %-30s %10s\n", "total", period.FormatDuration(summary.TotalMinutes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectFilter, "project", "p", "", "filter by project (substring, hierarchy-aware)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
