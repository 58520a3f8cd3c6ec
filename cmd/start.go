package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/model"
	"github.com/nectime/nectime/internal/store"
)

var (
	startFolder  string
	startSession string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a tracked session for a folder",
	Args:  cobra.NoArgs,
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startFolder, "folder", "f", "", "Folder to track (default: current directory)")
	startCmd.Flags().StringVar(&startSession, "session", "", "Session identifier (default: generated)")
}

func runStart(cmd *cobra.Command, args []string) error {
	now := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	folder := startFolder
	if folder == "" {
		if folder, err = os.Getwd(); err != nil {
			fail(err)
		}
	}

	id := startSession
	if id == "" {
		id = uuid.NewString()
	}

	sess, err := st.Start(id, folder, now)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSession) {
			fmt.Fprintln(os.Stderr, "Session already active for this ID. Use 'stop' or 'cancel' first.")
			os.Exit(1)
		}
		fail(err)
	}

	fmt.Printf("Session started: %s (%s)\n", sess.ProjectName, sess.FolderType)
	fmt.Printf("  Session: %s\n", id)
	fmt.Printf("  Begin:   %s\n", sess.Begin.Format("15:04:05"))
	switch sess.FolderType {
	case model.TypePending:
		fmt.Println("  Folder is unmapped; assign a project with 'nectime set pro <project-id>'.")
	case model.TypeOff:
		fmt.Println("  Folder is marked off; this session will not be logged.")
	}
	return nil
}
