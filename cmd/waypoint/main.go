package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/emilianohg/waypoint/internal/config"
	"github.com/emilianohg/waypoint/internal/httpapi"
	"github.com/emilianohg/waypoint/internal/logging"
	"github.com/emilianohg/waypoint/internal/planner"
	"github.com/emilianohg/waypoint/internal/storage"
	"github.com/emilianohg/waypoint/internal/storage/memory"
	"github.com/emilianohg/waypoint/internal/tui"
)

var (
	configPath      string
	backendOverride string
	verbose         bool
	dryRun          bool
)

// env is what every command needs once config is loaded.
type env struct {
	cfg     *config.Config
	logger  *log.Logger
	errLog  *logging.ErrorLog
	backend storage.Backend
	store   *planner.Store
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	if err := config.EnsureDirectories(); err != nil {
		return nil, err
	}
	return config.Load()
}

// setup loads config, opens the backend and builds the store. It exits the
// process on failure.
func setup(cmd *cobra.Command) *env {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if backendOverride != "" {
		cfg.Backend = backendOverride
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	e := &env{
		cfg:    cfg,
		logger: logging.NewConsole(level, cfg.LogFormat),
	}
	if path, err := config.ErrorLogPath(); err == nil {
		e.errLog = logging.NewErrorLog(path)
	}

	backend, err := storage.Open(cmd.Context(), cfg)
	if err != nil {
		e.fail(cmd, err)
	}
	e.logger.Debug("opened backend", "backend", storage.Describe(backend))

	tolerant := storage.IsKeyValue(backend)
	if dryRun {
		data, err := backend.Load(cmd.Context())
		backend.Close()
		if err != nil {
			e.fail(cmd, err)
		}
		backend = memory.NewWithData(cfg.DocumentKey, data)
		e.logger.Info("dry run: changes will not be saved")
	}
	e.backend = backend

	e.store = planner.New(backend,
		planner.WithLogger(e.logger),
		planner.WithTolerantDecode(tolerant),
	)
	return e
}

func (e *env) close() {
	if e.backend != nil {
		e.backend.Close()
	}
	e.errLog.Close()
}

// fail records err in the error log, prints it and exits.
func (e *env) fail(cmd *cobra.Command, err error) {
	e.errLog.Record(cmd.CommandPath(), err)
	e.close()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Personal project planner",
	Long: `Waypoint organizes projects into milestones and tasks.

Run without arguments to open the terminal UI.`,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		// Upgrade an old document once up front rather than on the first keypress
		if migrated, err := e.store.Migrate(cmd.Context()); err != nil {
			e.fail(cmd, err)
		} else if migrated {
			e.logger.Info("document upgraded to the current layout")
		}

		// The TUI owns the terminal; keep console logs out of it
		e.logger.SetLevel(log.FatalLevel)

		if err := tui.Run(e.store); err != nil {
			e.fail(cmd, err)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API over HTTP",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = e.cfg.ListenAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := httpapi.New(e.store, e.logger)
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			e.fail(cmd, err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.waypoint/config.toml)")
	rootCmd.PersistentFlags().StringVar(&backendOverride, "backend", "", "Override the configured backend (file, sqlite, redis, postgres, memory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Work on an in-memory copy of the document")

	serveCmd.Flags().String("addr", "", "Listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
