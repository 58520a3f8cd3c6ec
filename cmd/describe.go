package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	describeFolder  string
	describeSession string
	describeIndex   int
)

var describeCmd = &cobra.Command{
	Use:   "describe [text]",
	Short: "Attach a description to the live session or a logged entry",
	Long: `Without --index, the description goes to the live session and is
carried into its log entry at close. With --index, it edits that unpushed
log entry (see 'nectime edit' for the index list). Pushed entries are frozen.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringVarP(&describeFolder, "folder", "f", "", "Folder of the session (default: current directory)")
	describeCmd.Flags().StringVar(&describeSession, "session", "", "Session identifier (default: the folder's only session)")
	describeCmd.Flags().IntVarP(&describeIndex, "index", "i", -1, "Unpushed log entry index instead of the live session")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}

	if describeIndex >= 0 {
		unpushed, err := st.Snapshot("")
		if err != nil {
			fail(err)
		}
		if describeIndex >= len(unpushed) {
			fmt.Fprintf(os.Stderr, "Invalid index; use 0-%d (see 'nectime edit').\n", len(unpushed)-1)
			os.Exit(1)
		}
		entry := unpushed[describeIndex]

		if len(args) == 0 {
			current := entry.Description
			if current == "" {
				current = "(none)"
			}
			fmt.Printf("Current description: %s\n", current)
			return nil
		}

		if err := st.SetEntryDescription(entry.ID, args[0]); err != nil {
			fail(err)
		}
		fmt.Printf("Description set on entry [%d].\n", describeIndex)
		return nil
	}

	id, err := resolveSession(st, describeSession, describeFolder)
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
		current := sess.Description
		if current == "" {
			current = "(none)"
		}
		fmt.Printf("Current description: %s\n", current)
		return nil
	}

	if err := st.SetDescription(id, args[0]); err != nil {
		fail(err)
	}
	fmt.Println("Description set on the live session.")
	return nil
}
