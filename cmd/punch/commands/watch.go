package commands

import (
	"github.com/spf13/cobra"

	"punch/internal/ui"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the active session live",
		Long: `Open a live view of the active session with a ticking clock and
today's total. Press x to stop the session, q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.flush()

			return ui.Run(a.tracker, ui.NewStyles(&a.cfg.Theme))
		},
	}
}
