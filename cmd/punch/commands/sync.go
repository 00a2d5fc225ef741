package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"punch/internal/gitsync"
)

func newSyncCommand() *cobra.Command {
	var (
		initRepo   bool
		showStatus bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the data directory with git",
		Long: `Commit pending changes in the data directory and push if a remote is
configured. Enable automatic commits via sync.enabled and sync.auto_commit in
the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if !gitsync.IsGitInstalled() {
				return fmt.Errorf("git is not installed")
			}

			gs := a.sync
			if gs == nil {
				gs = gitsync.New(a.store.DataDir(), &a.cfg.Sync)
			}

			if initRepo {
				if err := gs.Init(); err != nil {
					return err
				}
				fmt.Printf("Initialized git repository in %s\n", a.store.DataDir())
				return nil
			}

			if showStatus {
				st, err := gs.Status()
				if err != nil {
					return err
				}
				if !st.IsRepo {
					fmt.Println("Not a git repository (run 'punch sync --init')")
					return nil
				}
				fmt.Printf("Branch:  %s\n", st.Branch)
				fmt.Printf("Changes: %t\n", st.HasChanges)
				fmt.Printf("Remote:  %t\n", st.HasRemote)
				return nil
			}

			if !gs.IsRepo() {
				return fmt.Errorf("not a git repository - run 'punch sync --init' first")
			}
			if err := gs.CommitAll(); err != nil {
				return err
			}
			if st, err := gs.Status(); err == nil && st.HasRemote {
				if err := gs.Push(); err != nil {
					return err
				}
			}
			fmt.Println("Synced")
			return nil
		},
	}

	cmd.Flags().BoolVar(&initRepo, "init", false, "initialize a git repo in the data directory")
	cmd.Flags().BoolVar(&showStatus, "status", false, "show git sync status")
	return cmd
}
