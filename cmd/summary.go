package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/consolidate"
	"github.com/nectime/nectime/internal/timecalc"
)

var (
	summaryDate    string
	summaryVerbose bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the consolidated, day-capped view of unpushed entries",
	Long: `summary is the dry-run view of a push: it groups unpushed entries by
(day, project, activity), applies the daily cap and prints pre- and
post-shrink durations without submitting anything.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryDate, "date", "d", "", "Date filter (YYYY-MM-DD, default: all dates)")
	summaryCmd.Flags().BoolVarP(&summaryVerbose, "verbose-entries", "v", false, "Show descriptions and commits per aggregate")
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	if summaryDate != "" {
		if _, err := timecalc.ParseDay(summaryDate); err != nil {
			fail(err)
		}
	}

	entries, err := st.Snapshot(summaryDate)
	if err != nil {
		fail(err)
	}
	if len(entries) == 0 {
		fmt.Println("Nothing unpushed.")
		return nil
	}

	aggs := consolidate.Consolidate(entries, cfg.DailyCapSeconds())
	printAggregates(aggs, len(entries), summaryVerbose)
	return nil
}

// printAggregates renders the consolidated view, flagging shrunk days.
func printAggregates(aggs []consolidate.Aggregate, entryCount int, verbose bool) {
	fmt.Println("Consolidated entries (unpushed):")
	fmt.Println("---------------------------------------------------------------------------")

	var totalRaw, totalShrunk int64
	currentDate := ""
	for _, a := range aggs {
		if a.Date != currentDate {
			if a.Scale < 1.0 {
				fmt.Printf("\n  [%s] scaled to %.0f%% of logged time\n", a.Date, a.Scale*100)
			} else {
				fmt.Printf("\n  [%s]\n", a.Date)
			}
			currentDate = a.Date
		}

		line := fmt.Sprintf("    %-22s | %-12s | %s",
			a.ProjectName, a.Activity, timecalc.FormatDuration(a.RawSeconds))
		if a.Scale < 1.0 {
			line += fmt.Sprintf(" -> %s", timecalc.FormatDuration(a.ShrunkSeconds))
		}
		if n := len(a.EntryIDs); n > 1 {
			line += fmt.Sprintf(" (%d sessions)", n)
		}
		if !a.Pushable() {
			line += fmt.Sprintf(" [%s, not pushed]", a.FolderType)
		}
		fmt.Println(line)

		if verbose {
			for _, d := range a.Descriptions {
				fmt.Printf("      - %s\n", d)
			}
			if n := len(a.Commits); n > 0 {
				fmt.Printf("      %d commit(s): %s\n", n, a.Commits[0])
			}
		}

		totalRaw += a.RawSeconds
		totalShrunk += a.ShrunkSeconds
	}

	fmt.Println("\n---------------------------------------------------------------------------")
	fmt.Printf("Local sessions: %d -> timesheets: %d\n", entryCount, len(aggs))
	if totalRaw != totalShrunk {
		fmt.Printf("Total: %s -> %s (after shrink)\n",
			timecalc.FormatDuration(totalRaw), timecalc.FormatDuration(totalShrunk))
	} else {
		fmt.Printf("Total: %s\n", timecalc.FormatDuration(totalRaw))
	}
}
