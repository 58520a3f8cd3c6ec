package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var (
	activityFolder  string
	activitySession string
)

var activityCmd = &cobra.Command{
	Use:   "activity [key]",
	Short: "Show or change the current session's activity",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runActivity,
}

func init() {
	activityCmd.Flags().StringVarP(&activityFolder, "folder", "f", "", "Folder of the session (default: current directory)")
	activityCmd.Flags().StringVar(&activitySession, "session", "", "Session identifier (default: the folder's only session)")
}

func runActivity(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	id, err := resolveSession(st, activitySession, activityFolder)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(args) == 0 {
		sess, ok, err := st.Get(id)
		if err != nil {
			fail(err)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "No active session.")
			os.Exit(1)
		}
		current := sess.Activity
		if current == "" {
			current = "(not set)"
		}
		fmt.Printf("Current activity: %s\n", current)
		return nil
	}

	key := args[0]
	if _, ok := cfg.Activities[key]; !ok {
		fmt.Fprintf(os.Stderr, "Unknown activity %q. Available:\n", key)
		keys := make([]string, 0, len(cfg.Activities))
		for k := range cfg.Activities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", k, cfg.Activities[k].Name)
		}
		os.Exit(1)
	}

	if err := st.Heartbeat(id, time.Now(), key); err != nil {
		fail(err)
	}
	fmt.Printf("Activity changed: %s (%s)\n", key, cfg.Activities[key].Name)
	return nil
}
