package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/adriangreen/todo-tui/internal/config"
	"github.com/adriangreen/todo-tui/internal/feed"
	"github.com/adriangreen/todo-tui/internal/logging"
	"github.com/adriangreen/todo-tui/internal/memory"
	"github.com/adriangreen/todo-tui/internal/ui"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	endpoint   string
	timeout    int
	limit      int
	logLevel   string
	logFile    string
	clearState bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Task List Manager - browse and edit a to-do list in the terminal",
		Long: `Task List Manager loads a to-do list from a JSON feed and lets you
filter, search, add, edit and delete tasks in an interactive table.
Changes live in memory for the session; the feed is never written to.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default is config.json or config.toml in the user config dir)")
	pf.StringVar(&opts.endpoint, "endpoint", "", "URL of the task feed")
	pf.IntVar(&opts.timeout, "timeout", 0, "feed request timeout in seconds")
	pf.IntVar(&opts.limit, "limit", 0, "rows shown after the first load, -1 for all")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFile, "log-file", "", "write logs to this file")

	cmd.Flags().BoolVar(&opts.clearState, "clear-state", false, "Clear the saved view state before starting")

	cmd.AddCommand(
		newListCommand(opts),
		newStateCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// overrides applies explicitly set flags on top of files and environment.
func (o *rootOptions) overrides(cmd *cobra.Command) func(*config.Config) {
	flags := cmd.Flags()
	return func(cfg *config.Config) {
		if flags.Changed("endpoint") {
			cfg.Feed.URL = o.endpoint
		}
		if flags.Changed("timeout") {
			cfg.Feed.TimeoutSeconds = o.timeout
		}
		if flags.Changed("limit") {
			cfg.UI.InitialLimit = o.limit
		}
		if flags.Changed("log-level") {
			cfg.Log.Level = o.logLevel
		}
		if flags.Changed("log-file") {
			cfg.Log.Path = o.logFile
		}
	}
}

// loadConfig is the one-shot variant of NewConfigManager used by
// non-interactive commands.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	o.overrides(cmd)(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// openState opens the view-state store selected by the config.
func openState(cfg *config.Config) (*memory.Helper, func() error, error) {
	mem, err := memory.Open(cfg.StateBackend, cfg.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}
	return memory.NewHelper(mem), mem.Close, nil
}

// runTUI starts the Bubble Tea TUI application
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	ctx, cancel := signalContext()
	defer cancel()

	configManager, err := config.NewConfigManager(opts.configPath, opts.overrides(cmd))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := configManager.GetConfig()

	// The alternate screen owns stdout, so logs always go to a file.
	logger, closeLog, err := logging.New(logging.Options{
		Level:           cfg.Log.Level,
		Format:          cfg.Log.Format,
		Path:            cfg.Log.Path,
		Prefix:          config.AppName,
		ReportTimestamp: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer closeLog()
	logger.Info("starting", "feed", cfg.Feed.URL, "config", cfg.ConfigPath)

	state, closeState, err := openState(cfg)
	if err != nil {
		// The TUI works without saved state.
		logger.Warn("view state unavailable", "err", err)
	} else {
		defer closeState()
	}

	if opts.clearState && state != nil {
		if err := ui.ClearViewState(ctx, state); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to clear state: %v\n", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Saved view state cleared")
		}
	}

	if err := configManager.StartWatcher(ctx, func(err error) {
		logger.Warn("config watcher", "err", err)
	}); err != nil {
		logger.Debug("config watcher not started", "err", err)
	}
	defer configManager.StopWatcher()

	source, err := feed.New(cfg, logger.WithPrefix("feed"))
	if err != nil {
		return err
	}

	m := ui.NewModel(ui.Options{
		Config:        cfg,
		ConfigManager: configManager,
		Loader:        source,
		State:         state,
		Logger:        logger,
		Context:       ctx,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			logger.Info("interrupted")
			return nil
		}
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	logger.Info("exiting")
	return nil
}

// stderrLogger logs to the command's stderr unless a log file was requested.
func stderrLogger(cmd *cobra.Command, cfg *config.Config) (*log.Logger, func() error, error) {
	path := ""
	if cmd.Flags().Changed("log-file") {
		path = cfg.Log.Path
	}
	return logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Path:   path,
		Writer: cmd.ErrOrStderr(),
		Prefix: config.AppName,
	})
}
