package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/model"
	"github.com/nectime/nectime/internal/store"
	"github.com/nectime/nectime/internal/timecalc"
)

var (
	stopFolder   string
	stopSession  string
	stopActivity string
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Close a session and log it locally",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().StringVarP(&stopFolder, "folder", "f", "", "Folder of the session (default: current directory)")
	stopCmd.Flags().StringVar(&stopSession, "session", "", "Session identifier (default: the folder's only session)")
	stopCmd.Flags().StringVarP(&stopActivity, "activity", "a", "", "Activity key for the log entry")
}

func runStop(cmd *cobra.Command, args []string) error {
	now := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	id, err := resolveSession(st, stopSession, stopFolder)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	entry, err := st.Close(id, now, stopActivity)
	if err != nil {
		if errors.Is(err, store.ErrUnknownSession) {
			fmt.Fprintln(os.Stderr, "No active session to stop.")
			os.Exit(1)
		}
		fail(err)
	}

	if entry == nil {
		fmt.Println("Session closed (folder marked off, nothing logged).")
		return nil
	}

	fmt.Printf("Session closed: %s\n", entry.ProjectName)
	fmt.Printf("  Duration: %s\n", timecalc.FormatDuration(entry.DurationSeconds))
	fmt.Printf("  Activity: %s\n", entry.Activity)
	if n := len(entry.Commits); n > 0 {
		fmt.Printf("  Commits:  %d\n", n)
	}
	switch entry.FolderType {
	case model.TypePro:
		fmt.Println("  -> push with 'nectime push'")
	case model.TypePerso:
		fmt.Println("  (local only)")
	case model.TypePending:
		fmt.Println("  (pending a project assignment)")
	}
	return nil
}

// resolveSession picks the target session: an explicit --session wins;
// otherwise the folder (default cwd) must have exactly one live session.
func resolveSession(st *store.Store, sessionFlag, folderFlag string) (string, error) {
	if sessionFlag != "" {
		return sessionFlag, nil
	}

	folder := folderFlag
	if folder == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		folder = wd
	}
	folder = filepath.Clean(folder)

	sessions, err := st.Sessions()
	if err != nil {
		return "", err
	}

	var ids []string
	for id, sess := range sessions {
		if sess.Folder == folder {
			ids = append(ids, id)
		}
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no active session in %s", folder)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%d sessions active in %s; pick one with --session", len(ids), folder)
	}
}
