// Package mapping stores the folder → tracking-defaults table consulted at
// session start. This table is only ever mutated by the explicit set
// command, never by the state machine.
package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nectime/nectime/internal/model"
)

// FilePath returns the mapping file location inside the data directory.
func FilePath(dir string) string {
	return filepath.Join(dir, "folder_mappings.json")
}

// Table is the folder → mapping lookup, keyed by cleaned absolute path.
type Table struct {
	dir      string
	Mappings map[string]model.Mapping
}

// Load reads the mapping table for the data directory. A missing file
// yields an empty table.
func Load(dir string) (*Table, error) {
	t := &Table{dir: dir, Mappings: map[string]model.Mapping{}}

	data, err := os.ReadFile(FilePath(dir))
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading folder mappings: %w", err)
	}
	if err := json.Unmarshal(data, &t.Mappings); err != nil {
		return nil, fmt.Errorf("corrupt folder mappings file: %w", err)
	}
	return t, nil
}

// Lookup finds the mapping for a folder, walking parent directories so a
// mapping set on a repository root covers its subfolders.
func (t *Table) Lookup(folder string) (model.Mapping, bool) {
	current := filepath.Clean(folder)
	for {
		if m, ok := t.Mappings[current]; ok {
			return m, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return model.Mapping{}, false
		}
		current = parent
	}
}

// Set records or replaces the mapping for a folder and saves the table.
func (t *Table) Set(folder string, m model.Mapping) error {
	t.Mappings[filepath.Clean(folder)] = m

	if err := os.MkdirAll(t.dir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	data, err := json.MarshalIndent(t.Mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling folder mappings: %w", err)
	}
	path := FilePath(t.dir)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing folder mappings: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving folder mappings: %w", err)
	}
	return nil
}
