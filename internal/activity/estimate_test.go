package activity_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nectime/nectime/internal/activity"
	"github.com/nectime/nectime/internal/config"
)

func testRules() map[string]config.ActivityRule {
	return map[string]config.ActivityRule{
		"development": {
			Keywords:   []string{"implement", "fix", "refactor"},
			Extensions: []string{".go", ".py"},
		},
		"review": {
			Keywords: []string{"review", "feedback"},
		},
		"documentation": {
			Keywords:   []string{"document", "readme"},
			Extensions: []string{".md"},
		},
	}
}

func TestEstimateKeywordMatch(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"development keyword", "please fix the flaky test", "development"},
		{"review keyword", "any feedback on this change?", "review"},
		{"case insensitive", "REVIEW the pull request", "review"},
		{"extension outweighs keyword", "review main.go for races", "development"},
		{"no match", "hello there", ""},
		{"empty prompt", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := activity.Estimate(tt.prompt, t.TempDir(), testRules())
			if got != tt.want {
				t.Errorf("Estimate(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestEstimateRecentFilesCount(t *testing.T) {
	dir := t.TempDir()
	// A just-written markdown file nudges the score toward documentation.
	if err := os.WriteFile(filepath.Join(dir, "NOTES.md"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	got := activity.Estimate("polish the readme", dir, testRules())
	if got != "documentation" {
		t.Errorf("Estimate = %q, want documentation", got)
	}
}

func TestEstimateMissingFolderIsHarmless(t *testing.T) {
	got := activity.Estimate("fix the bug", filepath.Join(t.TempDir(), "gone"), testRules())
	if got != "development" {
		t.Errorf("Estimate = %q, want development from prompt alone", got)
	}
}

func TestEstimateNoRules(t *testing.T) {
	if got := activity.Estimate("fix everything", t.TempDir(), nil); got != "" {
		t.Errorf("Estimate = %q, want empty with no rules", got)
	}
}
