package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration for nectime, stored in ~/.nectime/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Kimai           KimaiConfig             `json:"kimai"`
	DailyCapHours   float64                 `json:"daily_cap_hours"`
	DefaultActivity string                  `json:"default_activity"`
	Activities      map[string]ActivityInfo `json:"activities"`
	AutoActivity    AutoActivityConfig      `json:"auto_activity"`
}

// KimaiConfig holds connection settings for the Kimai time-tracking service.
type KimaiConfig struct {
	// URL is the base URL of the Kimai instance, e.g. "https://kimai.example.com".
	URL string `json:"url"`
	// APIToken is the personal API token used as a Bearer credential.
	APIToken string `json:"api_token"`
	// DryRun blocks all writes to Kimai; push prints what it would submit.
	DryRun bool `json:"dry_run"`
}

// ActivityInfo maps a local activity key to a Kimai activity.
type ActivityInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AutoActivityConfig controls prompt-based activity estimation in the hook.
type AutoActivityConfig struct {
	Enabled         bool                    `json:"enabled"`
	IntervalMinutes int                     `json:"interval_minutes"`
	Rules           map[string]ActivityRule `json:"rules"`
}

// ActivityRule scores an activity by prompt keywords and file extensions.
type ActivityRule struct {
	Keywords   []string `json:"keywords"`
	Extensions []string `json:"extensions"`
}

const (
	// DefaultDailyCapHours caps the pushable total per calendar day.
	DefaultDailyCapHours = 8
	// DefaultActivityKey is used when a session carries no activity estimate.
	DefaultActivityKey = "development"
)

// DailyCapSeconds returns the configured daily cap in seconds.
func (c Config) DailyCapSeconds() int64 {
	return int64(c.DailyCapHours * 3600)
}

// ActivityID resolves a local activity key to its Kimai activity ID.
func (c Config) ActivityID(key string) (int, bool) {
	a, ok := c.Activities[key]
	return a.ID, ok
}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		DailyCapHours:   DefaultDailyCapHours,
		DefaultActivity: DefaultActivityKey,
		Activities: map[string]ActivityInfo{
			DefaultActivityKey: {ID: 1, Name: "Development"},
		},
		AutoActivity: AutoActivityConfig{IntervalMinutes: 15},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// nectime configuration – ~/.nectime/config.json
//
// Edit this file before the first push. Sessions are tracked locally even
// with an empty Kimai section; only the push/summary commands need it.
{
  // ── Kimai connection ─────────────────────────────────────────────────────
  "kimai": {
    // Base URL of your Kimai instance, without trailing slash.
    "url": "",

    // Personal API token (Kimai profile → API → create token).
    "api_token": "",

    // While true, push prints the planned timesheets without submitting.
    "dry_run": true
  },

  // Daily cap in hours. Days whose unpushed total exceeds the cap are
  // shrunk proportionally at consolidation time.
  "daily_cap_hours": 8,

  // Activity key used when a session never received an estimate.
  "default_activity": "development",

  // Local activity keys mapped to Kimai activity IDs.
  "activities": {
    "development": { "id": 1, "name": "Development" }
  },

  // Prompt-based activity estimation in the hook. Disabled by default.
  "auto_activity": {
    "enabled": false,
    "interval_minutes": 15,
    "rules": {
      "development": { "keywords": ["implement", "fix", "refactor"], "extensions": [".go", ".py"] }
    }
  }
}
`

// Path returns the config file location inside the given data directory.
func Path(dir string) string {
	return filepath.Join(dir, "config.json")
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config file in dir, creating it with annotated defaults on
// first run. Lines starting with // are treated as comments and stripped
// before JSON parsing.
func Load(dir string) (Config, error) {
	path := Path(dir)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.DailyCapHours <= 0 {
		cfg.DailyCapHours = DefaultDailyCapHours
	}
	if cfg.DefaultActivity == "" {
		cfg.DefaultActivity = DefaultActivityKey
	}
	if cfg.AutoActivity.IntervalMinutes <= 0 {
		cfg.AutoActivity.IntervalMinutes = 15
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
