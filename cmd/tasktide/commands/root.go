package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tasktide/cmd/tasktide/output"
	"tasktide/internal/di"
	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/config"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// Global flags
	projectRef   string
	outputFormat string
	configPath   string
	quiet        bool

	// Shared instances
	cfg       *config.Config
	loader    *config.Loader
	logger    *slog.Logger
	container *di.Container
	cleanup   func()
	printer   *output.Printer
	formatter *output.Formatter
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tasktide",
	Short: "Kanban board with blocked-by dependencies",
	Long: `tasktide is a kanban board for your terminal with projects, four workflow
columns and blocked-by dependencies between tasks.

Tasks move through To Do, Working, Reviewing and Completed. Moving a task into
Completed completes it; a task blocked by incomplete tasks cannot be completed.

Examples:
  # Launch interactive TUI
  tasktide
  tasktide tui

  # Create a task in To Do
  tasktide task create --title "Fix login bug" --column "To Do"

  # Move it along
  tasktide task move 12 working

  # Make it wait on another task
  tasktide dep add 12 7

  # Show the board as JSON
  tasktide board -o json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, loader, err = config.LoadFrom(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", loader.GetConfigPath(), err)
		}

		logger = mustMakeLogger(cfg.LogLevel)

		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		formatter = output.NewFormatter(format, os.Stdout)
		printer = output.DefaultPrinter()
		printer.SetQuiet(quiet)

		return nil
	},
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	defer func() {
		if cleanup != nil {
			cleanup()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		output.ErrorPrinter().Error("%v", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectRef, "project", "p", "", "Project to operate on: id, name or 'none' (default: selected project)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			printVersion()
			return nil
		}
		return tuiCmd.RunE(cmd, args)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("tasktide version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Built:      %s\n", BuildDate)
}

// mustMakeLogger builds the stderr logger for the configured level
func mustMakeLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO", "":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		panic("unknown log level: " + level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// getContext returns a context for command execution
func getContext() context.Context {
	return context.Background()
}

// loadBoard builds the container and loads the board of the configured
// user with the selected project active.
func loadBoard(ctx context.Context) (*di.Container, error) {
	return openBoard(ctx, false)
}

// followBoard is loadBoard for long running commands: the board keeps
// following the change feed until ctx is done.
func followBoard(ctx context.Context) (*di.Container, error) {
	return openBoard(ctx, true)
}

func openBoard(ctx context.Context, live bool) (*di.Container, error) {
	if container != nil {
		return container, nil
	}

	c, done, err := di.InitializeContainer(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	cleanup = done

	load := c.Load
	if live {
		load = c.Live
	}
	if err := load(ctx); err != nil {
		return nil, err
	}

	projectID, err := selectedProject(c)
	if err != nil {
		return nil, err
	}
	if err := c.Coordinator.SelectProject(projectID); err != nil {
		return nil, err
	}

	container = c
	return c, nil
}

// selectedProject resolves --project, then the saved selection, then the
// store's default.
func selectedProject(c *di.Container) (*int64, error) {
	if projectRef != "" {
		return resolveProject(c, projectRef)
	}
	if id := cfg.Board.ActiveProject; id > 0 {
		if _, ok := c.Store.Project(id); ok {
			return entity.Int64Ptr(id), nil
		}
		logger.Warn("saved project no longer exists", "project", id)
	}
	return c.Store.ActiveProjectID(), nil
}

// resolveProject accepts a project id, a case-insensitive name or "none"
func resolveProject(c *di.Container, ref string) (*int64, error) {
	ref = strings.TrimSpace(ref)
	if strings.EqualFold(ref, "none") {
		return nil, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if _, ok := c.Store.Project(id); ok {
			return entity.Int64Ptr(id), nil
		}
		return nil, fmt.Errorf("%w: %d", entity.ErrProjectNotFound, id)
	}
	for _, p := range c.Store.Projects() {
		if strings.EqualFold(p.Name, ref) {
			return entity.Int64Ptr(p.ID), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", entity.ErrProjectNotFound, ref)
}

// parseID parses a positional task or project id
func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, arg)
	}
	return id, nil
}

// flushNotices prints the coordinator notices collected during a command
func flushNotices(c *di.Container) {
	for _, n := range c.Notices.Drain() {
		switch n.Level {
		case "error":
			printer.Error("%s", n.Message)
		case "warning":
			printer.Warning("%s", n.Message)
		default:
			printer.Success("%s", n.Message)
		}
	}
}
