package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/timecalc"
)

var logDate string

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the local log for a day",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVarP(&logDate, "date", "d", "", "Date (YYYY-MM-DD, default: today)")
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	date := logDate
	if date == "" {
		date = timecalc.DayKey(time.Now())
	} else if _, err := timecalc.ParseDay(date); err != nil {
		fail(err)
	}

	entries, err := st.Entries(date)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Log for %s\n", date)
	fmt.Println("------------------------------------------------------------")
	if len(entries) == 0 {
		fmt.Println("No entries.")
		return nil
	}

	var total int64
	for _, e := range entries {
		status := "L"
		if e.Pushed {
			status = "K"
		}
		fmt.Printf("[%s] %s-%s | %-25s | %-12s | %s\n",
			status,
			e.Begin.Format("15:04"), e.End.Format("15:04"),
			e.ProjectName, e.Activity,
			timecalc.FormatDuration(e.DurationSeconds))
		total += e.DurationSeconds
	}
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %s\n", timecalc.FormatDuration(total))
	return nil
}
