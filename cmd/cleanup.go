package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/timecalc"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Close sessions idle for more than 12 hours",
	Long: `cleanup sweeps the session store and force-closes every session whose
last activity is older than 12 hours, logging it as if it had ended at that
last activity. The same sweep runs automatically on every session start.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	closed, err := st.ForceClose(time.Now())
	if err != nil {
		fail(err)
	}

	if len(closed) == 0 {
		fmt.Println("No stale sessions.")
		return nil
	}

	fmt.Printf("Stale sessions closed and logged: %d\n", len(closed))
	for _, e := range closed {
		fmt.Printf("  - %s (%s)\n", e.ProjectName, timecalc.FormatDuration(e.DurationSeconds))
	}
	return nil
}
