package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nectime/nectime/internal/kimai"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List Kimai projects",
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List Kimai activities",
	Args:  cobra.NoArgs,
	RunE:  runActivities,
}

func kimaiClient() (*kimai.Client, context.Context) {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	if cfg.Kimai.URL == "" || cfg.Kimai.APIToken == "" {
		fmt.Fprintln(os.Stderr, "Kimai is not configured; set kimai.url and kimai.api_token in config.json.")
		os.Exit(1)
	}
	ctx := context.Background()
	return kimai.NewClient(ctx, cfg.Kimai.URL, cfg.Kimai.APIToken), ctx
}

func runProjects(cmd *cobra.Command, args []string) error {
	client, ctx := kimaiClient()

	projects, err := client.Projects(ctx)
	if err != nil {
		fail(err)
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	fmt.Printf("%4s | %s\n", "ID", "Name")
	fmt.Println("------------------------------------------------------------")
	for _, p := range projects {
		fmt.Printf("%4d | %s\n", p.ID, p.Name)
	}
	return nil
}

func runActivities(cmd *cobra.Command, args []string) error {
	client, ctx := kimaiClient()

	activities, err := client.Activities(ctx)
	if err != nil {
		fail(err)
	}

	sort.Slice(activities, func(i, j int) bool { return activities[i].Name < activities[j].Name })
	fmt.Printf("%4s | %s\n", "ID", "Name")
	fmt.Println("--------------------------------------------------")
	for _, a := range activities {
		fmt.Printf("%4d | %s\n", a.ID, a.Name)
	}
	return nil
}
