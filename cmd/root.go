package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/config"
	"github.com/nectime/nectime/internal/gitlog"
	"github.com/nectime/nectime/internal/mapping"
	"github.com/nectime/nectime/internal/store"
)

var rootVerbose bool

var rootCmd = &cobra.Command{
	Use:   "nectime",
	Short: "nectime – per-folder session time tracking with Kimai push",
	Long: `nectime tracks working time per coding session, driven by agent-host
hooks or manual commands. Closed sessions land in an append-only local log;
the push command consolidates them per day and submits them to Kimai.
All data is stored as human-readable JSON files in ~/.nectime/.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if rootVerbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootVerbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(activitiesCmd)
}

// baseDir returns the root data directory (~/.nectime), overridable with
// NECTIME_DIR for tests and non-standard setups.
func baseDir() (string, error) {
	if dir := os.Getenv("NECTIME_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".nectime"), nil
}

// openStore wires the session store with its collaborators: the folder
// mapping table, the git commit lister and the configured default activity.
func openStore(cfg config.Config) (*store.Store, error) {
	dir, err := baseDir()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dir)
	if err != nil {
		return nil, err
	}
	tbl, err := mapping.Load(dir)
	if err != nil {
		return nil, err
	}
	st.Mappings = tbl
	st.Commits = gitlog.Lister{}
	st.DefaultActivity = cfg.DefaultActivity
	return st, nil
}

// loadConfig reads the config from the data directory.
func loadConfig() (config.Config, error) {
	dir, err := baseDir()
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(dir)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}
