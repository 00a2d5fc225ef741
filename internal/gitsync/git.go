// Package gitsync provides optional git synchronization of the punch data
// directory: automatic commits after saves, plus pull and push.
package gitsync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"punch/internal/config"
	"punch/internal/fsutil"
	"punch/internal/store"
)

const (
	defaultGitTimeout  = 10 * time.Second
	pullPushGitTimeout = 60 * time.Second
	commitGitTimeout   = 15 * time.Second
)

// GitSync manages git operations for the data directory.
type GitSync struct {
	dataDir string
	config  *config.SyncConfig

	// Debounced auto-commit state.
	pendingContexts []store.SaveContext
	commitTimer     *time.Timer
	mu              gosync.Mutex

	// Serializes git operations to avoid index/lock conflicts.
	opMu gosync.Mutex

	debounceDuration time.Duration
}

// New creates a GitSync for the given data directory.
func New(dataDir string, cfg *config.SyncConfig) *GitSync {
	return &GitSync{
		dataDir:          dataDir,
		config:           cfg,
		debounceDuration: 2 * time.Second,
	}
}

// IsGitInstalled checks whether git is available on the system.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo checks whether the data directory is a git repository.
func (g *GitSync) IsRepo() bool {
	info, err := os.Stat(filepath.Join(g.dataDir, ".git"))
	return err == nil && info.IsDir()
}

// Init initializes a git repository in the data directory with a .gitignore
// covering backups and scratch files.
func (g *GitSync) Init() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !IsGitInstalled() {
		return fmt.Errorf("git is not installed")
	}
	if _, err := g.runGitTimeout(commitGitTimeout, "init"); err != nil {
		return fmt.Errorf("failed to initialize git repository: %w", err)
	}

	gitignore := "# punch data repository\nbackups/\n*.bak\n*.tmp-*\n"
	if err := fsutil.WriteFileAtomic(filepath.Join(g.dataDir, ".gitignore"), []byte(gitignore), 0600); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	if _, err := g.runGit("add", ".gitignore"); err != nil {
		return fmt.Errorf("failed to stage .gitignore: %w", err)
	}
	if _, err := g.runGitTimeout(commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", "Initialize punch data repository"); err != nil {
		if !isGitNothingToCommit(err) {
			return fmt.Errorf("failed to create initial commit: %w", err)
		}
	}
	return nil
}

// Status summarizes the repository state for `punch sync --status`.
type Status struct {
	IsRepo     bool
	Branch     string
	HasChanges bool
	HasRemote  bool
}

// Status returns the current git status of the data directory.
func (g *GitSync) Status() (*Status, error) {
	st := &Status{IsRepo: g.IsRepo()}
	if !st.IsRepo {
		return st, nil
	}

	if out, err := g.runGit("rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		st.Branch = strings.TrimSpace(out)
	}
	out, err := g.runGit("status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}
	st.HasChanges = strings.TrimSpace(out) != ""

	if out, err := g.runGit("remote"); err == nil {
		st.HasRemote = strings.TrimSpace(out) != ""
	}
	return st, nil
}

// CommitAll stages and commits every pending change in the data directory.
func (g *GitSync) CommitAll() error {
	return g.commit(nil)
}

// Pull fetches and merges from the default remote.
func (g *GitSync) Pull() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()
	if _, err := g.runGitTimeout(pullPushGitTimeout, "pull", "--rebase"); err != nil {
		return fmt.Errorf("git pull failed: %w", err)
	}
	return nil
}

// Push pushes committed changes to the default remote.
func (g *GitSync) Push() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()
	if _, err := g.runGitTimeout(pullPushGitTimeout, "push"); err != nil {
		return fmt.Errorf("git push failed: %w", err)
	}
	return nil
}

// OnSaved queues a save for a debounced auto-commit. The semantic context
// becomes the commit message ("Stop timer: business/quote").
func (g *GitSync) OnSaved(ctx store.SaveContext) {
	if !g.config.Enabled || !g.config.AutoCommit || !g.IsRepo() {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.pendingContexts = append(g.pendingContexts, ctx)
	if g.commitTimer != nil {
		g.commitTimer.Stop()
	}
	g.commitTimer = time.AfterFunc(g.debounceDuration, g.flush)
}

// Flush immediately commits any pending saves without waiting for debounce.
func (g *GitSync) Flush() {
	g.mu.Lock()
	if g.commitTimer != nil {
		g.commitTimer.Stop()
		g.commitTimer = nil
	}
	g.mu.Unlock()
	g.flush()
}

func (g *GitSync) flush() {
	g.mu.Lock()
	contexts := g.pendingContexts
	g.pendingContexts = nil
	g.mu.Unlock()

	if len(contexts) > 0 {
		_ = g.commit(contexts)
	}
}

func (g *GitSync) commit(contexts []store.SaveContext) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return fmt.Errorf("not a git repository - run 'punch sync --init' first")
	}
	if _, err := g.runGit("add", "-A"); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}

	msg := g.commitMessage(contexts)
	if _, err := g.runGitTimeout(commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", msg); err != nil {
		if isGitNothingToCommit(err) {
			return nil
		}
		return fmt.Errorf("git commit failed: %w", err)
	}

	if g.config.AutoPush {
		if _, err := g.runGitTimeout(pullPushGitTimeout, "push"); err != nil {
			return fmt.Errorf("git push failed: %w", err)
		}
	}
	return nil
}

// commitMessage derives a commit message from the pending save contexts, or
// falls back to the configured template.
func (g *GitSync) commitMessage(contexts []store.SaveContext) string {
	if g.config.CommitMessage != "" && g.config.CommitMessage != "auto" {
		return g.config.CommitMessage
	}
	if len(contexts) == 0 {
		return fmt.Sprintf("Update punch data (%s)", time.Now().Format("2006-01-02 15:04"))
	}
	ctx := contexts[len(contexts)-1]
	msg := semanticMessage(ctx)
	if len(contexts) > 1 {
		msg = fmt.Sprintf("%s (+%d more)", msg, len(contexts)-1)
	}
	return msg
}

func semanticMessage(ctx store.SaveContext) string {
	switch ctx.Operation {
	case "start":
		return "Start timer: " + ctx.ItemName
	case "stop":
		return "Stop timer: " + ctx.ItemName
	case "log":
		return "Log time: " + ctx.ItemName
	case "delete":
		return "Delete entries: " + ctx.ItemName
	default:
		return "Update " + ctx.Filename
	}
}

func (g *GitSync) runGit(args ...string) (string, error) {
	return g.runGitTimeout(defaultGitTimeout, args...)
}

func (g *GitSync) runGitTimeout(timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dataDir
	cmd.Env = envWithOverrides(os.Environ(), map[string]string{
		"GIT_TERMINAL_PROMPT": "0",
		"GIT_ASKPASS":         "",
		"SSH_ASKPASS":         "",
	})
	cmd.Stdin = bytes.NewReader(nil)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %s", strings.Join(args, " "), timeout)
		}
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", fmt.Errorf("%s", errMsg)
	}
	return stdout.String(), nil
}

func envWithOverrides(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if ok {
			if v, hit := overrides[k]; hit {
				out = append(out, k+"="+v)
				seen[k] = true
				continue
			}
		}
		out = append(out, kv)
	}
	for k, v := range overrides {
		if !seen[k] {
			out = append(out, k+"="+v)
		}
	}
	return out
}

func isGitNothingToCommit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nothing to commit") ||
		strings.Contains(msg, "nothing added to commit") ||
		strings.Contains(msg, "no changes added to commit")
}
