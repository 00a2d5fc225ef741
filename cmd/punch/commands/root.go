// Package commands implements the punch command-line interface. Commands
// parse arguments, invoke tracker operations, and render the structured
// results; all tracking semantics live in internal/track.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"punch/internal/config"
	"punch/internal/gitsync"
	"punch/internal/store"
	"punch/internal/track"
)

// Version information - set by the build.
var (
	version = "dev"
	commit  = "none"
)

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "punch",
		Short:   "Track time per project from the command line",
		Long:    `punch is a personal time tracker: start and stop timed sessions per project, log time retrospectively, and view aggregated summaries. Data lives in plain files under ~/.punch.`,
		Version: fmt.Sprintf("%s (commit %s)", version, commit),
	}

	rootCmd.AddCommand(
		newStartCommand(),
		newStopCommand(),
		newLogCommand(),
		newSummaryCommand(),
		newLogsCommand(),
		newDeleteCommand(),
		newProjectsCommand(),
		newStatusCommand(),
		newExportCommand(),
		newWatchCommand(),
		newBackupCommand(),
		newRestoreCommand(),
		newSyncCommand(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the initialized config, store, tracker, and optional git sync
// for one command invocation.
type app struct {
	cfg     *config.Config
	store   *store.Store
	tracker *track.Tracker
	sync    *gitsync.GitSync
}

// newApp loads configuration and opens the store. Git sync is wired in only
// when enabled, git is installed, and the data directory is a repository.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	st, err := store.New(cfg.GetDataDir())
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		store:   st,
		tracker: track.New(st, cfg.Rounding.Enabled),
	}
	if cfg.Sync.Enabled && gitsync.IsGitInstalled() {
		a.sync = gitsync.New(cfg.GetDataDir(), &cfg.Sync)
		if cfg.Sync.AutoCommit && a.sync.IsRepo() {
			st.SetOnSave(a.sync.OnSaved)
		}
	}
	return a, nil
}

// flush commits any pending git-sync changes before the process exits.
func (a *app) flush() {
	if a.sync != nil {
		a.sync.Flush()
	}
}

// printJSON renders any operation result as indented JSON on stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
