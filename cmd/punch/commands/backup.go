package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"punch/internal/backup"
)

func newBackupCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create or list backups of the data files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			mgr := backup.NewManager(a.store.DataDir(), version)

			if list {
				backups, err := mgr.List()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Println("No backups found")
					return nil
				}
				for _, b := range backups {
					fmt.Printf("%s  (%d entries)\n", b.Name, b.Stats["entries"])
				}
				return nil
			}

			name, err := mgr.Create()
			if err != nil {
				return err
			}
			fmt.Printf("Created backup %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list available backups")
	return cmd
}

func newRestoreCommand() *cobra.Command {
	var latest bool

	cmd := &cobra.Command{
		Use:   "restore [NAME]",
		Short: "Restore data files from a backup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if latest == (len(args) == 1) {
				return fmt.Errorf("give either a backup name or --latest")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			mgr := backup.NewManager(a.store.DataDir(), version)

			name := ""
			if latest {
				if name, err = mgr.Latest(); err != nil {
					return err
				}
			} else {
				name = args[0]
			}

			if err := mgr.Restore(name); err != nil {
				return err
			}
			fmt.Printf("Restored backup %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "restore the most recent backup")
	return cmd
}
