// Package locallog reads and writes the append-only log of closed sessions.
//
// The functions here do plain file I/O and perform no locking of their own;
// callers serialize access through the store's advisory lock so that log
// appends and session-store updates happen in one critical section.
package locallog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nectime/nectime/internal/model"
)

// Log is the top-level structure stored in local_log.json.
type Log struct {
	Entries []model.LogEntry `json:"entries"`
}

// FilePath returns the log file location inside the given data directory.
func FilePath(dir string) string {
	return filepath.Join(dir, "local_log.json")
}

// Load reads the log for the given data directory. Returns an empty Log if
// the file does not exist yet.
func Load(dir string) (Log, error) {
	path := FilePath(dir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Log{Entries: []model.LogEntry{}}, nil
	}
	if err != nil {
		return Log{}, fmt.Errorf("reading local log %s: %w", path, err)
	}

	var lg Log
	if err := json.Unmarshal(data, &lg); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return Log{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return lg, nil
}

// Save atomically writes the log for the given data directory.
func Save(dir string, lg Log) error {
	path := FilePath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(lg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling local log: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Append loads the log, appends one entry and saves it back.
func Append(dir string, entry model.LogEntry) error {
	lg, err := Load(dir)
	if err != nil {
		return err
	}
	lg.Entries = append(lg.Entries, entry)
	return Save(dir, lg)
}

// Unpushed returns the entries with pushed == false, optionally filtered to
// a single date key (YYYY-MM-DD). An empty date means all dates.
func (l Log) Unpushed(date string) []model.LogEntry {
	var out []model.LogEntry
	for _, e := range l.Entries {
		if e.Pushed {
			continue
		}
		if date != "" && e.Date != date {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ForDate returns all entries (pushed or not) with the given date key.
// An empty date means all dates.
func (l Log) ForDate(date string) []model.LogEntry {
	var out []model.LogEntry
	for _, e := range l.Entries {
		if date != "" && e.Date != date {
			continue
		}
		out = append(out, e)
	}
	return out
}
