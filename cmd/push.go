package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/consolidate"
	"github.com/nectime/nectime/internal/kimai"
	"github.com/nectime/nectime/internal/timecalc"
)

var (
	pushDate string
	pushYes  bool
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Submit consolidated entries to Kimai",
	Long: `push consolidates unpushed pro entries per (day, project, activity),
applies the daily cap and submits one timesheet per aggregate. Kimai offers
no idempotency key, so push shows the full plan and asks for confirmation
unless --yes is given. Entries are marked pushed only on confirmed success.`,
	Args: cobra.NoArgs,
	RunE: runPush,
}

func init() {
	pushCmd.Flags().StringVarP(&pushDate, "date", "d", "", "Date filter (YYYY-MM-DD, default: all dates)")
	pushCmd.Flags().BoolVarP(&pushYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	if pushDate != "" {
		if _, err := timecalc.ParseDay(pushDate); err != nil {
			fail(err)
		}
	}

	entries, err := st.Snapshot(pushDate)
	if err != nil {
		fail(err)
	}
	if len(entries) == 0 {
		fmt.Println("Nothing to push.")
		return nil
	}

	aggs := consolidate.Consolidate(entries, cfg.DailyCapSeconds())
	printAggregates(aggs, len(entries), true)

	pushable := 0
	for _, a := range aggs {
		if a.Pushable() {
			pushable++
		}
	}
	if pushable == 0 {
		fmt.Printf("\nNo pushable aggregates (%d perso/pending kept locally).\n", len(aggs))
		return nil
	}

	if cfg.Kimai.URL == "" || cfg.Kimai.APIToken == "" {
		fmt.Fprintln(os.Stderr, "Kimai is not configured; set kimai.url and kimai.api_token in config.json.")
		os.Exit(1)
	}
	if cfg.Kimai.DryRun {
		fmt.Println("\n[dry-run] Nothing submitted. Disable kimai.dry_run in config.json to push.")
		return nil
	}

	if !pushYes && !confirm(fmt.Sprintf("\nPush %d timesheet(s) to Kimai? (y/N) ", pushable)) {
		fmt.Println("Push cancelled.")
		return nil
	}

	ctx := context.Background()
	client := kimai.NewClient(ctx, cfg.Kimai.URL, cfg.Kimai.APIToken)
	rec := &kimai.Reconciler{
		Creator:    client,
		Marker:     st,
		ActivityID: cfg.ActivityID,
		Log:        log.Logger,
	}

	fmt.Println()
	result, err := rec.Push(ctx, aggs)
	if err != nil {
		fail(err)
	}

	fmt.Printf("\n%d timesheet(s) created, %d entries marked pushed", result.Pushed, result.EntriesMarked)
	if result.Skipped > 0 {
		fmt.Printf(", %d aggregate(s) skipped (perso/pending)", result.Skipped)
	}
	fmt.Println()
	if result.Failed > 0 {
		fmt.Printf("%d aggregate(s) failed and remain unpushed; rerun push to retry.\n", result.Failed)
		os.Exit(2)
	}
	return nil
}

// confirm reads a y/N answer from stdin.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
