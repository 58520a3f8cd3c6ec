package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/activity"
	"github.com/nectime/nectime/internal/config"
	"github.com/nectime/nectime/internal/kimai"
	"github.com/nectime/nectime/internal/model"
	"github.com/nectime/nectime/internal/store"
	"github.com/nectime/nectime/internal/timecalc"
)

// hookInput is the JSON event the agent host writes to stdin.
type hookInput struct {
	SessionID     string `json:"session_id"`
	Cwd           string `json:"cwd"`
	HookEventName string `json:"hook_event_name"`
	Source        string `json:"source"`
	Prompt        string `json:"prompt"`
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Process one agent-host hook event from stdin",
	Long: `hook reads a single JSON event (session_id, cwd, hook_event_name, ...)
from stdin and drives the session state machine: SessionStart starts a
session (after sweeping stale ones), SessionEnd closes it, UserPromptSubmit
heartbeats it. Replies go to stdout as a {"systemMessage": ...} line.
The command never exits non-zero; it must not break the host.`,
	Args: cobra.NoArgs,
	RunE: runHook,
}

func runHook(cmd *cobra.Command, args []string) error {
	var in hookInput
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		log.Debug().Err(err).Msg("hook: undecodable input")
		return nil
	}
	if in.SessionID == "" {
		return nil
	}
	cwd := in.Cwd
	if cwd == "" {
		cwd = "."
	}
	cwd = filepath.Clean(cwd)

	cfg, err := loadConfig()
	if err != nil {
		log.Debug().Err(err).Msg("hook: config load failed")
		return nil
	}
	st, err := openStore(cfg)
	if err != nil {
		log.Debug().Err(err).Msg("hook: store open failed")
		return nil
	}

	now := time.Now()
	switch in.HookEventName {
	case "SessionStart":
		// Resumed or compacted conversations keep their running session.
		if in.Source == "resume" || in.Source == "clear" || in.Source == "compact" {
			return nil
		}
		hookStart(cfg, st, in.SessionID, cwd, now)
	case "SessionEnd":
		hookStop(st, in.SessionID, now)
	case "UserPromptSubmit":
		hookHeartbeat(cfg, st, in.SessionID, cwd, in.Prompt, now)
	default:
		log.Debug().Str("event", in.HookEventName).Msg("hook: ignored event")
	}
	return nil
}

// systemMessage emits the host-visible reply on stdout and mirrors it to
// stderr for terminal users. Stdout carries nothing else.
func systemMessage(msg string) {
	out, err := json.Marshal(map[string]string{"systemMessage": msg})
	if err != nil {
		return
	}
	fmt.Println(string(out))
	fmt.Fprintln(os.Stderr, msg)
}

func hookStart(cfg config.Config, st *store.Store, id, cwd string, now time.Time) {
	closed, err := st.ForceClose(now)
	if err != nil {
		log.Debug().Err(err).Msg("hook: stale sweep failed")
	}
	cleanupMsg := ""
	if len(closed) > 0 {
		var total int64
		for _, e := range closed {
			total += e.DurationSeconds
		}
		cleanupMsg = fmt.Sprintf(" [%d stale closed: %s]", len(closed), timecalc.FormatDuration(total))
	}

	sess, err := st.Start(id, cwd, now)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSession) {
			systemMessage(fmt.Sprintf("nectime: session already active%s", cleanupMsg))
			return
		}
		log.Debug().Err(err).Msg("hook: start failed")
		return
	}

	switch sess.FolderType {
	case model.TypeOff:
		systemMessage(fmt.Sprintf("nectime: folder ignored%s", cleanupMsg))
	case model.TypePending:
		suggestion := suggestProjects(cfg, sess.ProjectName)
		if suggestion != "" {
			systemMessage(fmt.Sprintf("nectime: new folder %q - similar projects: %s - /nectime set pro <id>%s",
				sess.ProjectName, suggestion, cleanupMsg))
		} else {
			systemMessage(fmt.Sprintf("nectime: new folder %q - no similar project - /nectime projects%s",
				sess.ProjectName, cleanupMsg))
		}
	default:
		label := map[model.FolderType]string{
			model.TypePro:   "Kimai",
			model.TypePerso: "local",
		}[sess.FolderType]
		systemMessage(fmt.Sprintf("nectime: session started - %s (%s)%s", sess.ProjectName, label, cleanupMsg))
	}
}

func hookStop(st *store.Store, id string, now time.Time) {
	entry, err := st.Close(id, now, "")
	if err != nil {
		// A host restart can lose the session ID; nothing to report.
		log.Debug().Err(err).Msg("hook: close failed")
		return
	}
	if entry == nil {
		return
	}

	commitsInfo := ""
	if n := len(entry.Commits); n > 0 {
		commitsInfo = fmt.Sprintf(" [%d commits]", n)
	}
	label := map[model.FolderType]string{
		model.TypePro:     "-> /nectime push",
		model.TypePerso:   "(local)",
		model.TypePending: "(pending)",
	}[entry.FolderType]
	systemMessage(fmt.Sprintf("nectime: session closed - %s - %s%s %s",
		entry.ProjectName, timecalc.FormatDuration(entry.DurationSeconds), commitsInfo, label))
}

func hookHeartbeat(cfg config.Config, st *store.Store, id, cwd, prompt string, now time.Time) {
	estimate := ""
	if cfg.AutoActivity.Enabled && prompt != "" {
		if sess, ok, err := st.Get(id); err == nil && ok {
			// Re-estimate after a quiet gap or while no estimate exists yet.
			interval := time.Duration(cfg.AutoActivity.IntervalMinutes) * time.Minute
			if sess.Activity == "" || now.Sub(sess.LastActivity) >= interval {
				estimate = activity.Estimate(prompt, cwd, cfg.AutoActivity.Rules)
				if estimate != "" && estimate != sess.Activity && sess.Activity != "" {
					systemMessage(fmt.Sprintf("nectime: activity changed: %s -> %s", sess.Activity, estimate))
				}
			}
		}
	}

	if err := st.Heartbeat(id, now, estimate); err != nil {
		log.Debug().Err(err).Msg("hook: heartbeat failed")
	}
}

// suggestProjects does a best-effort fuzzy lookup of the folder name against
// the Kimai project list; it must never delay the host noticeably.
func suggestProjects(cfg config.Config, folderName string) string {
	if cfg.Kimai.URL == "" || cfg.Kimai.APIToken == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client := kimai.NewClient(ctx, cfg.Kimai.URL, cfg.Kimai.APIToken)
	matches, err := client.FindProjectsByName(ctx, folderName)
	if err != nil || len(matches) == 0 {
		return ""
	}
	if len(matches) > 2 {
		matches = matches[:2]
	}
	out := ""
	for i, p := range matches {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s (id=%d)", p.Name, p.ID)
	}
	return out
}
