package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/config"
	"github.com/nectime/nectime/internal/kimai"
	"github.com/nectime/nectime/internal/mapping"
	"github.com/nectime/nectime/internal/model"
)

var setFolder string

var setCmd = &cobra.Command{
	Use:   "set <type> [project-id]",
	Short: "Classify a folder (pro, perso, pending, off)",
	Long: `set records how time in a folder is handled. The mapping also covers
subfolders, and any live session of the folder is retargeted immediately.
For pro folders, pass the Kimai project ID (see 'nectime projects').`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVarP(&setFolder, "folder", "f", "", "Folder to classify (default: current directory)")
}

func runSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}

	folderType, err := model.ParseFolderType(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var projectID *int
	if len(args) == 2 {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid project ID %q\n", args[1])
			os.Exit(1)
		}
		projectID = &id
	}
	if folderType == model.TypePro && projectID == nil {
		fmt.Fprintln(os.Stderr, "pro folders need a Kimai project ID: nectime set pro <project-id>")
		os.Exit(1)
	}

	folder := setFolder
	if folder == "" {
		if folder, err = os.Getwd(); err != nil {
			fail(err)
		}
	}
	folder = filepath.Clean(folder)

	projectName := filepath.Base(folder)
	if folderType == model.TypePro {
		// Best-effort name resolution so status and summaries read well.
		if name := lookupProjectName(cfg, *projectID); name != "" {
			projectName = name
		} else {
			projectName = fmt.Sprintf("Project %d", *projectID)
		}
	}

	m := model.Mapping{
		FolderType:      folderType,
		ProjectID:       projectID,
		ProjectName:     projectName,
		DefaultActivity: cfg.DefaultActivity,
	}

	dir, err := baseDir()
	if err != nil {
		fail(err)
	}
	tbl, err := mapping.Load(dir)
	if err != nil {
		fail(err)
	}
	if err := tbl.Set(folder, m); err != nil {
		fail(err)
	}

	st, err := openStore(cfg)
	if err != nil {
		fail(err)
	}
	updated, err := st.Retarget(folder, m)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Mapping saved: %s\n", folder)
	fmt.Printf("  Type:    %s\n", folderType)
	if folderType == model.TypePro {
		fmt.Printf("  Project: %s (id=%d)\n", projectName, *projectID)
	}
	if updated > 0 {
		fmt.Printf("  %d live session(s) retargeted.\n", updated)
	}
	switch folderType {
	case model.TypePro:
		fmt.Println("  -> hours will be pushed to Kimai")
	case model.TypePerso:
		fmt.Println("  -> hours stay local")
	case model.TypePending:
		fmt.Println("  -> waiting for a Kimai project")
	case model.TypeOff:
		fmt.Println("  -> this folder is ignored")
	}
	return nil
}

// lookupProjectName asks Kimai for the project's display name. Returns ""
// when Kimai is unreachable or unconfigured.
func lookupProjectName(cfg config.Config, id int) string {
	if cfg.Kimai.URL == "" || cfg.Kimai.APIToken == "" {
		return ""
	}
	ctx := context.Background()
	client := kimai.NewClient(ctx, cfg.Kimai.URL, cfg.Kimai.APIToken)
	projects, err := client.Projects(ctx)
	if err != nil {
		return ""
	}
	for _, p := range projects {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}
