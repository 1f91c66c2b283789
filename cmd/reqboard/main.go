package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/reqboard/internal/auth"
	"github.com/robby/reqboard/internal/config"
	"github.com/robby/reqboard/internal/engine"
	"github.com/robby/reqboard/internal/gateway"
	"github.com/robby/reqboard/internal/projector"
	"github.com/robby/reqboard/internal/store"
	"github.com/robby/reqboard/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags
	configFlag   string
	endpointFlag string
	projectFlag  string
	pageSizeFlag int
	viewFlag     string
	logFileFlag  string
	debugFlag    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reqboard",
		Short: "Terminal UI for project requirements",
		Long: `reqboard is a terminal user interface for browsing and triaging project
requirements as a table, a card grid or a kanban board.

Drag a requirement to another status column with space/enter or the mouse.

Authentication:
  1. token_command in the config file (e.g. a password manager call)
  2. Environment variable: Set REQBOARD_TOKEN

Configuration is read from $XDG_CONFIG_HOME/reqboard/config.toml.`,
		SilenceUsage: true,
		RunE:         run,
	}

	// Define CLI flags
	rootCmd.Flags().StringVar(&configFlag, "config", "", "Config file path (default $XDG_CONFIG_HOME/reqboard/config.toml)")
	rootCmd.Flags().StringVar(&endpointFlag, "endpoint", "", "GraphQL endpoint URL. Overrides the config file.")
	rootCmd.Flags().StringVar(&projectFlag, "project", "", "Project ID. Skips the project picker.")
	rootCmd.Flags().IntVar(&pageSizeFlag, "page-size", 0, "Records per server page.")
	rootCmd.Flags().StringVar(&viewFlag, "view", "", "Initial view: table, grid or board.")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "Write logs to this file.")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "Enable debug logging.")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configFlag
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = endpointFlag
	}
	if flags.Changed("project") {
		cfg.Project = projectFlag
	}
	if flags.Changed("page-size") {
		cfg.PageSize = pageSizeFlag
	}
	if flags.Changed("view") {
		cfg.View = viewFlag
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFileFlag
	}
	if flags.Changed("debug") {
		cfg.Debug = debugFlag
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger logs to cfg.LogFile, or nowhere. The TUI owns the terminal.
func newLogger(cfg config.Config) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	log.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if cfg.LogFile == "" {
		log.SetOutput(io.Discard)
		return log, func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, func() { _ = f.Close() }, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mode, err := projector.ParseMode(cfg.View)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	token, err := auth.GetToken(cfg.TokenCommand)
	if err != nil {
		return fmt.Errorf("failed to obtain API token: %w\n\nPlease configure token_command in the config file\nor set the %s environment variable", err, auth.TokenEnvVar)
	}

	client := gateway.New(cfg.Endpoint, token, gateway.WithLogger(log))
	s := store.New(cfg.PageSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.WithFields(logrus.Fields{
		"endpoint": cfg.Endpoint,
		"project":  cfg.Project,
		"view":     mode,
	}).Info("starting reqboard")

	app := tui.NewAppModel(ctx, client, s, tui.AppOptions{
		ProjectID: cfg.Project,
		WebURL:    cfg.WebURL,
		Engine: engine.Options{
			Debounce:               cfg.Debounce.Duration,
			TablePageSize:          cfg.TablePage,
			Mode:                   mode,
			RefreshShadowAfterMove: cfg.RefreshShadowAfterMove,
			Logger:                 log,
		},
	})

	// Run Bubble Tea program
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}
