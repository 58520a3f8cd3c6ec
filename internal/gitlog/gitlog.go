// Package gitlog collects the commit references made during a session.
package gitlog

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// commandTimeout bounds the git invocation; a wedged repository must never
// delay a session close.
const commandTimeout = 5 * time.Second

// Lister shells out to git. The zero value is ready to use; it satisfies
// the store's CommitLister.
type Lister struct{}

// Commits returns one-line commit references ("<hash> <subject>") made in
// folder between begin and end. Any failure, including folder not being a
// repository, yields nil.
func (Lister) Commits(folder string, begin, end time.Time) []string {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log",
		"--since", begin.Format(time.RFC3339),
		"--until", end.Format(time.RFC3339),
		"--format=%h %s")
	cmd.Dir = folder

	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
