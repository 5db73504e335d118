package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studiowebux/restdeck/internal/app"
	"github.com/studiowebux/restdeck/internal/cli"
	"github.com/studiowebux/restdeck/internal/config"
	"github.com/studiowebux/restdeck/internal/executor"
	"github.com/studiowebux/restdeck/internal/history"
	"github.com/studiowebux/restdeck/internal/keybinds"
	"github.com/studiowebux/restdeck/internal/logging"
	"github.com/studiowebux/restdeck/internal/registry"
	"github.com/studiowebux/restdeck/internal/tui"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "restdeck",
	Short: "restdeck - browse and edit REST collections in the terminal",
	Long: `restdeck lists the users, posts and todos of a JSONPlaceholder-style API
in an interactive TUI. Records can be added and edited; edits stay local and
are never sent back to the server.

Settings live in ~/.restdeck/config.yaml and keybinding overrides in
~/.restdeck/keybinds.jsonc.

Examples:
  restdeck                                   # Start interactive TUI
  restdeck --base-url http://localhost:8080  # Browse a local fixture server
  restdeck dump users -o json                # Print a collection and exit
  restdeck mock --delay posts=2s             # Serve fixtures locally
  restdeck --help                            # Show help`,
	Version: version,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump [collection...]",
	Short: "Fetch collections and print them",
	Long: `Fetch one or more collections and print their records.

Collections may be given by key, position (1-3) or a fuzzy prefix.
Without arguments an interactive picker is shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd, args)
	},
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the registered collections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(false)
		if err != nil {
			return err
		}
		defer env.close()
		cli.Collections(cmd.OutOrStdout(), env.registry)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show, summarize or clear the fetch history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd)
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve built-in collection fixtures over HTTP",
	Long: `Start a local server answering /users, /posts and /todos with fixture data.

Delays and failures can be injected per collection to try the loading and
error states of the TUI.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMock(cmd)
	},
}

// Flags for the root command, inherited by every subcommand
var (
	flagConfigDir string
	flagBaseURL   string
	flagLogLevel  string
)

// Flags for dump
var (
	flagOutput string
)

// Flags for history
var (
	flagLimit int
	flagClear bool
	flagStats bool
)

// Flags for mock
var (
	mockPort   int
	mockHost   string
	mockConfig string
	mockDelays []string
	mockFails  []string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "Configuration directory (default ~/.restdeck)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Override base_url from config.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override log_level (debug/info/warn/error)")

	dumpCmd.Flags().StringVarP(&flagOutput, "output", "o", cli.FormatTable, "Output format (table/json/yaml)")

	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", history.DefaultLimit, "Number of entries to show")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all history entries")
	historyCmd.Flags().BoolVar(&flagStats, "stats", false, "Show per-collection fetch statistics")
	historyCmd.MarkFlagsMutuallyExclusive("clear", "stats")

	mockCmd.Flags().IntVarP(&mockPort, "port", "p", 8080, "Port to listen on (0 picks a free port)")
	mockCmd.Flags().StringVar(&mockHost, "host", "localhost", "Host to bind")
	mockCmd.Flags().StringVarP(&mockConfig, "config", "c", "", "Route file (YAML or JSON) replacing the built-in routes")
	mockCmd.Flags().StringArrayVar(&mockDelays, "delay", []string{}, "Delay a collection (name=duration), can be repeated")
	mockCmd.Flags().StringArrayVar(&mockFails, "fail", []string{}, "Fail a collection (name or name=status), can be repeated")

	// Add subcommands
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
}

// environment is the configuration every command starts from
type environment struct {
	settings *config.Settings
	logger   *zap.Logger
	registry *registry.Registry
}

// setup initializes the config directory, loads settings with flag overrides
// and builds the collection registry. toFile sends logs to the log file so
// they do not draw over the TUI.
func setup(toFile bool) (*environment, error) {
	var err error
	if flagConfigDir != "" {
		err = config.InitializeAt(flagConfigDir)
	} else {
		err = config.Initialize()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	settings, err := config.Load(config.SettingsFile)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(settings); err != nil {
		return nil, err
	}

	logPath := ""
	if toFile {
		logPath = config.LogFile
	}
	logger, err := logging.New(settings.LogLevel, logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	reg, err := registry.FromSettings(settings)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &environment{settings: settings, logger: logger, registry: reg}, nil
}

// applyOverrides layers command-line flags over the loaded settings
func applyOverrides(settings *config.Settings) error {
	if flagBaseURL != "" {
		base, err := normalizeBaseURL(flagBaseURL)
		if err != nil {
			return err
		}
		settings.BaseURL = base
	}
	if flagLogLevel != "" {
		settings.LogLevel = flagLogLevel
	}

	if tlsCfg := settings.TLS; tlsCfg != nil {
		for _, path := range []*string{&tlsCfg.CertFile, &tlsCfg.KeyFile, &tlsCfg.CAFile} {
			expanded, err := config.ExpandPath(*path)
			if err != nil {
				return err
			}
			*path = expanded
		}
	}
	return nil
}

func (e *environment) client() (*executor.Client, error) {
	return executor.NewClient(executor.Options{
		Timeout:   e.settings.Timeout,
		Token:     e.settings.Token,
		TLS:       e.settings.TLS,
		UserAgent: "restdeck/" + version,
	})
}

func (e *environment) close() {
	_ = e.logger.Sync()
}

// runTUI starts the interactive TUI
func runTUI(cmd *cobra.Command) error {
	env, err := setup(true)
	if err != nil {
		return err
	}
	defer env.close()

	client, err := env.client()
	if err != nil {
		return err
	}
	defer client.Close()

	opts := []app.Option{app.WithLogger(env.logger)}

	var hist *history.Manager
	if env.settings.HistoryEnabled() {
		hist, err = history.NewManager(config.DatabasePath)
		if err != nil {
			// The TUI works without the fetch log
			env.logger.Warn("fetch history unavailable", zap.String("path", config.DatabasePath), zap.Error(err))
			hist = nil
		} else {
			opts = append(opts, app.WithRecorder(hist))
		}
	}

	if err := keybinds.CreateExampleConfig(config.KeybindsFile); err != nil {
		env.logger.Warn("failed to write example keybinds", zap.String("path", config.KeybindsFile), zap.Error(err))
	}
	keys, result, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		if hist != nil {
			_ = hist.Close()
		}
		return err
	}
	if result.HasWarnings() {
		env.logger.Warn("keybinding warnings", zap.String("path", config.KeybindsFile), zap.String("details", result.String()))
	}

	ctrl := app.New(env.registry, client, opts...)
	env.logger.Info("session started",
		zap.String("session", ctrl.SessionID()),
		zap.String("base_url", env.settings.BaseURL),
		zap.Bool("history", hist != nil))

	return tui.Run(ctrl, tui.Options{
		Keybinds:       keys,
		History:        hist,
		Logger:         env.logger,
		MessageTimeout: env.settings.MessageTimeout,
	})
}

// runDump fetches collections and prints them
func runDump(cmd *cobra.Command, args []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	if len(args) == 0 {
		if !cli.IsInteractive() {
			return fmt.Errorf("no collection given (pass a key, e.g. restdeck dump users)")
		}
		args, err = cli.PromptCollections(env.registry.All())
		if err != nil {
			return err
		}
	}

	client, err := env.client()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := contextWithSignals(cmd.Context())
	defer stop()

	return cli.Dump(ctx, cmd.OutOrStdout(), env.registry, client, cli.DumpOptions{
		Collections: args,
		Output:      flagOutput,
	})
}

// runHistory prints or clears the fetch log
func runHistory(cmd *cobra.Command) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.close()

	hist, err := history.NewManager(config.DatabasePath)
	if err != nil {
		return err
	}
	defer hist.Close()

	if flagClear {
		if err := hist.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return nil
	}
	if flagStats {
		return cli.Stats(cmd.OutOrStdout(), hist)
	}

	return cli.History(cmd.OutOrStdout(), hist, flagLimit)
}

// contextWithSignals cancels on Ctrl+C so long-running commands can shut down cleanly
func contextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
