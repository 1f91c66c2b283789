package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robby/reqboard/internal/auth"
	"github.com/robby/reqboard/internal/config"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/filter"
	"github.com/robby/reqboard/internal/gateway"
	"github.com/robby/reqboard/internal/stats"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	projectFlag  string
	searchFlag   string
	pageSizeFlag int
	debugFlag    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reqprobe",
		Short: "Fetch one page and the full collection and print what the board would show",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	rootCmd.Flags().StringVar(&projectFlag, "project", "", "Project ID (defaults to the configured project, then the first listed)")
	rootCmd.Flags().StringVar(&searchFlag, "search", "", "Search term for the windowed page")
	rootCmd.Flags().IntVar(&pageSizeFlag, "page-size", 0, "Records per server page")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "Log GraphQL traffic to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if debugFlag {
		log.SetLevel(logrus.DebugLevel)
	}

	path, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("page-size") {
		cfg.PageSize = pageSizeFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	token, err := auth.GetToken(cfg.TokenCommand)
	if err != nil {
		return err
	}
	client := gateway.New(cfg.Endpoint, token, gateway.WithLogger(log))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	viewer, err := client.Viewer(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to load viewer")
	} else {
		fmt.Printf("Viewer: %s (%s) role=%s\n", viewer.Name, viewer.ID, viewer.Role)
	}

	projectID := projectFlag
	if projectID == "" {
		projectID = cfg.Project
	}
	if projectID == "" {
		projects, err := client.ListProjects(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Projects (%d):\n", len(projects))
		for _, p := range projects {
			fmt.Printf("  %s: %s (%s)\n", p.ID, p.Name, p.Status)
		}
		if len(projects) == 0 {
			return nil
		}
		projectID = projects[0].ID
	}

	project, err := client.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	fmt.Printf("\nUsing project: %s (%s) members=%d\n\n", project.Name, project.ID, len(project.Members))

	page, err := client.FetchRecordsPage(ctx, project.ID, 0, cfg.PageSize, searchFlag)
	if err != nil {
		return err
	}
	fmt.Printf("Windowed page (search=%q): %d of %d records\n", searchFlag, len(page.Records), page.Total)
	for _, r := range page.Records {
		fmt.Printf("  %-10s %-12s %s\n", r.CustomID, r.Status, r.Title)
	}

	all, err := client.FetchAllRecords(ctx, project.ID)
	if err != nil {
		return err
	}

	printStats("Shadow copy", stats.Compute(all))
	printStats("Windowed page", stats.Compute(page.Records))

	fmt.Println("\nBoard columns (shadow copy):")
	for _, col := range filter.Grouped(all, filter.NewState()) {
		fmt.Printf("  %-12s %d\n", col.Status, len(col.Records))
	}
	return nil
}

func printStats(label string, st stats.Stats) {
	fmt.Printf("\n%s: %d total\n", label, st.Total)
	for _, s := range domain.Statuses() {
		fmt.Printf("  %-12s %d\n", s, st.Count(s))
	}
}
