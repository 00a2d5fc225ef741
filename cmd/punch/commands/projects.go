package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"punch/internal/period"
)

func newProjectsCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects with rolled-up totals",
		Long: `List every project with its direct time and its total including all
'/'-descendants, biggest totals first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			stats, err := a.tracker.Projects()
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(stats)
			}

			if len(stats) == 0 {
				fmt.Println("No projects yet")
				return nil
			}
			for _, st := range stats {
				line := fmt.Sprintf("%-30s %10s", st.Project, period.FormatDuration(st.TotalMinutes))
				if st.TotalMinutes != st.DirectMinutes {
					line += fmt.Sprintf("  (direct %s)", period.FormatDuration(st.DirectMinutes))
				}
				line += fmt.Sprintf("  %d entries, last %s", st.Entries, st.LastUsed.Format("2006-01-02"))
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.AddCommand(newProjectsDeleteCommand())
	return cmd
}

func newProjectsDeleteCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete every entry of an exactly named project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.flush()

			res, err := a.tracker.DeleteProject(args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(res)
			}
			fmt.Printf("Deleted project %s: %d entries, %s\n",
				args[0], len(res.Deleted), period.FormatDuration(res.TotalMinutes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
