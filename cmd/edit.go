package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/timecalc"
)

var editActivity string

var editCmd = &cobra.Command{
	Use:   "edit [index]",
	Short: "List unpushed entries or change one entry's activity",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editActivity, "activity", "a", "", "New activity key for the entry")
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	unpushed, err := st.Snapshot("")
	if err != nil {
		fail(err)
	}
	if len(unpushed) == 0 {
		fmt.Println("No editable entries (everything is pushed).")
		return nil
	}

	if len(args) == 0 {
		fmt.Println("Unpushed entries:")
		fmt.Println("----------------------------------------------------------------------")
		for i, e := range unpushed {
			extra := ""
			if e.Description != "" {
				extra += " [desc]"
			}
			if n := len(e.Commits); n > 0 {
				extra += fmt.Sprintf(" [%d commits]", n)
			}
			fmt.Printf("  [%d] %s %s-%s | %-20s | %-12s | %s%s\n",
				i, e.Date, e.Begin.Format("15:04"), e.End.Format("15:04"),
				e.ProjectName, e.Activity,
				timecalc.FormatDuration(e.DurationSeconds), extra)
		}
		fmt.Println("----------------------------------------------------------------------")
		fmt.Println("Usage: nectime edit <index> --activity <key>")
		return nil
	}

	index, err := strconv.Atoi(args[0])
	if err != nil || index < 0 || index >= len(unpushed) {
		fmt.Fprintf(os.Stderr, "Invalid index; use 0-%d.\n", len(unpushed)-1)
		os.Exit(1)
	}
	entry := unpushed[index]

	if editActivity == "" {
		fmt.Printf("Entry [%d]:\n", index)
		fmt.Printf("  Project:  %s\n", entry.ProjectName)
		fmt.Printf("  Date:     %s %s-%s\n", entry.Date, entry.Begin.Format("15:04"), entry.End.Format("15:04"))
		fmt.Printf("  Activity: %s\n", entry.Activity)
		fmt.Println("\nUsage: nectime edit", index, "--activity <key>")
		return nil
	}

	if _, ok := cfg.Activities[editActivity]; !ok {
		fmt.Fprintf(os.Stderr, "Unknown activity %q (see config.json).\n", editActivity)
		os.Exit(1)
	}

	if err := st.SetEntryActivity(entry.ID, editActivity); err != nil {
		fail(err)
	}
	fmt.Printf("Entry [%d] changed: %s -> %s\n", index, entry.Activity, editActivity)
	return nil
}
