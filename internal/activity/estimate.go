// Package activity scores heartbeat prompts against configured rules to
// estimate what kind of work a session is doing. The estimate only feeds
// the session's current_activity_estimate; the operator can always override
// it with the activity command.
package activity

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nectime/nectime/internal/config"
)

const (
	// maxScan bounds the directory scan so large working trees do not slow
	// down every heartbeat.
	maxScan = 200
	// recentWindow is how far back a file modification still counts as
	// session activity.
	recentWindow = 5 * time.Minute
)

// Estimate scores each configured rule against the prompt text and the
// recently modified files in folder, returning the best-scoring activity
// key or "" when nothing matches.
func Estimate(prompt, folder string, rules map[string]config.ActivityRule) string {
	promptLower := strings.ToLower(prompt)
	scores := map[string]int{}

	for key, rule := range rules {
		score := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(promptLower, strings.ToLower(kw)) {
				score += 2
			}
		}
		for _, ext := range rule.Extensions {
			if strings.Contains(promptLower, ext) {
				score += 3
			}
		}
		if score > 0 {
			scores[key] = score
		}
	}

	for _, ext := range recentExtensions(folder) {
		for key, rule := range rules {
			for _, re := range rule.Extensions {
				if re == ext {
					scores[key]++
				}
			}
		}
	}

	best := ""
	bestScore := 0
	for key, score := range scores {
		if score > bestScore || (score == bestScore && key < best) {
			best = key
			bestScore = score
		}
	}
	return best
}

// recentExtensions lists extensions of files modified within recentWindow,
// scanning only the top level of folder and at most maxScan entries.
func recentExtensions(folder string) []string {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil
	}

	cutoff := time.Now().Add(-recentWindow)
	var exts []string
	for i, entry := range entries {
		if i >= maxScan {
			break
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			continue
		}
		if ext := strings.ToLower(filepath.Ext(entry.Name())); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}
