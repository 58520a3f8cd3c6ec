package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nectime/nectime/internal/config"
)

func TestLoadFirstRunWritesTemplate(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load on empty dir: %v", err)
	}
	if cfg.DailyCapHours != config.DefaultDailyCapHours {
		t.Errorf("DailyCapHours = %v, want %v", cfg.DailyCapHours, config.DefaultDailyCapHours)
	}
	if _, err := os.Stat(config.Path(dir)); err != nil {
		t.Errorf("expected template config file to be written: %v", err)
	}

	// The written template must itself parse.
	cfg2, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load of written template: %v", err)
	}
	if !cfg2.Kimai.DryRun {
		t.Error("template config should default to dry_run = true")
	}
	if cfg2.DefaultActivity != config.DefaultActivityKey {
		t.Errorf("DefaultActivity = %q, want %q", cfg2.DefaultActivity, config.DefaultActivityKey)
	}
}

func TestLoadStripsComments(t *testing.T) {
	dir := t.TempDir()
	content := `// leading comment
{
  // inner comment
  "kimai": { "url": "https://kimai.example.com", "api_token": "tok", "dry_run": false },
  "daily_cap_hours": 6.5
}
`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Kimai.URL != "https://kimai.example.com" {
		t.Errorf("URL = %q", cfg.Kimai.URL)
	}
	if cfg.DailyCapHours != 6.5 {
		t.Errorf("DailyCapHours = %v, want 6.5", cfg.DailyCapHours)
	}
	if got := cfg.DailyCapSeconds(); got != 23400 {
		t.Errorf("DailyCapSeconds = %d, want 23400", got)
	}
	// Zero-value fields are backfilled.
	if cfg.DefaultActivity != config.DefaultActivityKey {
		t.Errorf("DefaultActivity = %q, want default", cfg.DefaultActivity)
	}
}

func TestLoadCorruptConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{bad"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(dir); err == nil {
		t.Error("expected error for corrupt config")
	}
}
