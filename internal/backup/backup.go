// Package backup provides timestamped backups of the punch data files
// (the time entry log and the current-session state).
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"punch/internal/fsutil"
	"punch/internal/store"
)

// Backup format constants.
const (
	ManifestVersion = "1.0"
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"
)

// Data files that are backed up.
var dataFiles = []string{store.LogFile, store.StateFile}

// Manager handles backup and restore operations.
type Manager struct {
	dataDir    string // path to data directory (e.g. ~/.punch)
	backupDir  string // path to backups directory (e.g. ~/.punch/backups)
	appVersion string
}

// Manifest contains metadata about a backup.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Files      []string       `json:"files"`
	Stats      map[string]int `json:"stats"`
}

// Info summarizes one existing backup.
type Info struct {
	Name      string         // directory name (2025-08-30_143022_001)
	Path      string         // full path to backup directory
	CreatedAt time.Time      // when the backup was created
	Stats     map[string]int // entries, tracking
}

// NewManager creates a backup manager for the given data directory.
func NewManager(dataDir, appVersion string) *Manager {
	return &Manager{
		dataDir:    dataDir,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
	}
}

// Create creates a new backup of the data files and returns its name.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := time.Now()
	name := fmt.Sprintf("%s_%03d", now.Format("2006-01-02_150405"), now.Nanosecond()/1e6)
	backupPath := filepath.Join(m.backupDir, name)
	if err := os.MkdirAll(backupPath, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	var copied []string
	stats := make(map[string]int)
	for _, filename := range dataFiles {
		data, err := os.ReadFile(filepath.Join(m.dataDir, filename))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("read %s: %w", filename, err)
		}
		if err := fsutil.WriteFileAtomic(filepath.Join(backupPath, filename), data, 0600); err != nil {
			return "", fmt.Errorf("backup %s: %w", filename, err)
		}
		copied = append(copied, filename)
		switch filename {
		case store.LogFile:
			stats["entries"] = countRows(data)
		case store.StateFile:
			stats["tracking"] = 1
		}
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Files:      copied,
		Stats:      stats,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize manifest: %w", err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(backupPath, ManifestFile), data, 0600); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	return name, nil
}

// countRows counts non-empty data rows in the log, excluding the header.
func countRows(data []byte) int {
	count := 0
	for i, line := range strings.Split(string(data), "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		count++
	}
	return count
}

// List returns available backups, newest first.
func (m *Manager) List() ([]Info, error) {
	dirs, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []Info
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		info := Info{
			Name: dir.Name(),
			Path: filepath.Join(m.backupDir, dir.Name()),
		}
		data, err := os.ReadFile(filepath.Join(info.Path, ManifestFile))
		if err != nil {
			continue // not a backup directory
		}
		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			continue
		}
		info.CreatedAt = manifest.CreatedAt
		info.Stats = manifest.Stats
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Latest returns the name of the most recent backup.
func (m *Manager) Latest() (string, error) {
	backups, err := m.List()
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("no backups found")
	}
	return backups[0].Name, nil
}

// Restore copies a backup's data files back into the data directory. The
// current files are backed up first so a bad restore can be undone.
func (m *Manager) Restore(name string) error {
	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(filepath.Join(backupPath, ManifestFile)); err != nil {
		return fmt.Errorf("backup not found: %s", name)
	}

	// Safety net before overwriting.
	if _, err := m.Create(); err != nil {
		return fmt.Errorf("pre-restore backup failed: %w", err)
	}

	for _, filename := range dataFiles {
		data, err := os.ReadFile(filepath.Join(backupPath, filename))
		if err != nil {
			if os.IsNotExist(err) {
				// A backup without state.json means no session was active.
				if filename == store.StateFile {
					_ = os.Remove(filepath.Join(m.dataDir, filename))
				}
				continue
			}
			return fmt.Errorf("read backup %s: %w", filename, err)
		}
		if err := fsutil.WriteFileAtomic(filepath.Join(m.dataDir, filename), data, 0600); err != nil {
			return fmt.Errorf("restore %s: %w", filename, err)
		}
	}
	return nil
}
