package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"punch/internal/period"
	"punch/internal/track"
)

func newDeleteCommand() *cobra.Command {
	var (
		projectFilter string
		last          bool
		today         bool
		week          bool
		month         bool
		jsonOut       bool
	)

	cmd := &cobra.Command{
		Use:   "delete [INDEX [PERIOD]]",
		Short: "Delete entries by index or by criteria",
		Long: `Delete a single entry by its 1-based index in the period-filtered
listing (as printed by 'punch logs'), or delete in bulk by project filter
and at most one of --last, --today, --week, or --month.

Examples:
  punch delete 3 week            delete the 3rd entry of this week's listing
  punch delete --project biz     delete every entry matching "biz"
  punch delete --project biz --today
  punch delete --last            delete the most recent entry`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteriaCount := 0
			for _, set := range []bool{last, today, week, month} {
				if set {
					criteriaCount++
				}
			}
			if criteriaCount > 1 {
				return fmt.Errorf("only one of --last, --today, --week, or --month may be given")
			}

			bulk := projectFilter != "" || criteriaCount > 0
			if bulk && len(args) > 0 {
				return fmt.Errorf("cannot combine an index with --project/--last/--today/--week/--month")
			}
			if !bulk && len(args) == 0 {
				return fmt.Errorf("nothing to delete: give an index, or --project and/or a criteria flag")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.flush()

			if bulk {
				crit := track.DeleteCriteria{Kind: track.CriteriaNone}
				switch {
				case last:
					crit.Kind = track.CriteriaLast
				case today:
					crit = track.DeleteCriteria{Kind: track.CriteriaPeriod, Period: period.Day}
				case week:
					crit = track.DeleteCriteria{Kind: track.CriteriaPeriod, Period: period.Week}
				case month:
					crit = track.DeleteCriteria{Kind: track.CriteriaPeriod, Period: period.Month}
				}

				res, err := a.tracker.DeleteByCriteria(projectFilter, crit)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(res)
				}
				for _, e := range res.Deleted {
					fmt.Printf("Deleted %s  %-30s %s\n", e.Date, e.Project,
						period.FormatDuration(e.Minutes))
				}
				fmt.Printf("Removed %d entries, %s total\n",
					len(res.Deleted), period.FormatDuration(res.TotalMinutes))
				return nil
			}

			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index must be a number, got %q", args[0])
			}
			periodArg := ""
			if len(args) > 1 {
				periodArg = args[1]
			}
			p, err := period.Parse(periodArg)
			if err != nil {
				return err
			}

			entry, err := a.tracker.DeleteEntry(index, p, a.store.Now())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(entry)
			}
			fmt.Printf("Deleted %s  %s (%s)\n", entry.Date, entry.Project,
				period.FormatDuration(entry.Minutes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectFilter, "project", "p", "", "delete entries matching this project filter")
	cmd.Flags().BoolVar(&last, "last", false, "delete only the most recent matching entry")
	cmd.Flags().BoolVar(&today, "today", false, "delete matching entries from today")
	cmd.Flags().BoolVar(&week, "week", false, "delete matching entries from this week")
	cmd.Flags().BoolVar(&month, "month", false, "delete matching entries from this month")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
