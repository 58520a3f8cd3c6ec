package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/model"
	"github.com/nectime/nectime/internal/timecalc"
)

var (
	statusAll    bool
	statusFolder string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show live sessions",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusAll, "all", "a", false, "Show sessions in every folder")
	statusCmd.Flags().StringVarP(&statusFolder, "folder", "f", "", "Folder to inspect (default: current directory)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	sessions, err := st.Sessions()
	if err != nil {
		fail(err)
	}

	if len(sessions) == 0 {
		fmt.Println("No active sessions.")
		return nil
	}

	folder := statusFolder
	if !statusAll {
		if folder == "" {
			if folder, err = os.Getwd(); err != nil {
				fail(err)
			}
		}
		folder = filepath.Clean(folder)
	}

	type row struct {
		id   string
		sess model.Session
	}
	var rows []row
	for id, sess := range sessions {
		if !statusAll && sess.Folder != folder {
			continue
		}
		rows = append(rows, row{id, sess})
	}

	if len(rows) == 0 {
		fmt.Printf("No session in this folder. %d session(s) active elsewhere (use --all).\n", len(sessions))
		return nil
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].sess.Begin.Before(rows[j].sess.Begin) })

	if statusAll {
		fmt.Printf("Active sessions: %d\n", len(rows))
	} else {
		fmt.Printf("Sessions in %s:\n", filepath.Base(folder))
	}
	for _, r := range rows {
		elapsed := int64(now.Sub(r.sess.Begin).Seconds())
		activity := r.sess.Activity
		if activity == "" {
			activity = "-"
		}
		fmt.Printf("  [%.8s] %-25s | %s | %-12s | %s\n",
			r.id, r.sess.ProjectName, timecalc.FormatDurationHHMMSS(elapsed),
			activity, filepath.Base(r.sess.Folder))
	}
	return nil
}
