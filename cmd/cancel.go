package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/store"
)

var (
	cancelFolder  string
	cancelSession string
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Discard a session without logging it",
	Args:  cobra.NoArgs,
	RunE:  runCancel,
}

func init() {
	cancelCmd.Flags().StringVarP(&cancelFolder, "folder", "f", "", "Folder of the session (default: current directory)")
	cancelCmd.Flags().StringVar(&cancelSession, "session", "", "Session identifier (default: the folder's only session)")
}

func runCancel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	id, err := resolveSession(st, cancelSession, cancelFolder)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := st.Cancel(id); err != nil {
		if errors.Is(err, store.ErrUnknownSession) {
			fmt.Fprintln(os.Stderr, "No active session to cancel.")
			os.Exit(1)
		}
		fail(err)
	}

	fmt.Println("Session cancelled.")
	return nil
}
