// Package cmd wires the CLI surface: recording, playback, listings, the
// watch and schedule daemons, and diagnostics.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/replaykit/internal/buildinfo"
	"github.com/offlinefirst/replaykit/pkg/config"
	"github.com/offlinefirst/replaykit/pkg/logging"
)

// AppContext exposes lazily initialised configuration and logging facilities.
type AppContext struct {
	Config config.Config
	Logger *slog.Logger
}

// App holds the global flag state shared by every subcommand.
type App struct {
	configPath string
	logLevel   string
	logFormat  string

	stdout io.Writer
	stderr io.Writer
	appCtx *AppContext
}

// NewRootCommand constructs the CLI with the standard output streams.
func NewRootCommand() *cobra.Command {
	return newApp(os.Stdout, os.Stderr).Root()
}

func newApp(stdout, stderr io.Writer) *App {
	return &App{stdout: stdout, stderr: stderr}
}

// Root assembles the command tree and global flags.
func (a *App) Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "replaykit",
		Short:         "Record and replay keyboard and mouse macros",
		Long:          "replaykit captures global keyboard and mouse activity into JSON recordings\nand replays them later with the original relative timing.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: ./config.yaml if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Override log output format (json, console)")

	root.AddCommand(a.newRecordCommand())
	root.AddCommand(a.newPlayCommand())
	root.AddCommand(a.newListCommand())
	root.AddCommand(a.newWatchCommand())
	root.AddCommand(a.newScheduleCommand())
	root.AddCommand(a.newDoctorCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// ensureAppContext loads configuration and builds the logger once, applying
// flag overrides on top of the file values.
func (a *App) ensureAppContext() (*AppContext, error) {
	if a.appCtx != nil {
		return a.appCtx, nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}

	if a.logLevel != "" {
		lvl, err := config.NormalizeLogLevel(a.logLevel)
		if err != nil {
			return nil, err
		}
		cfg.Logging.Level = lvl
	}
	if a.logFormat != "" {
		format, err := config.NormalizeFormat(a.logFormat)
		if err != nil {
			return nil, err
		}
		cfg.Logging.Format = format
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: a.stderr,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("configuration loaded", "source", cfg.Source, "recordings_dir", cfg.Paths.RecordingsDir)

	a.appCtx = &AppContext{Config: cfg, Logger: logger}
	return a.appCtx, nil
}

func versionString() string {
	return fmt.Sprintf("%s (go%s/%s)", buildinfo.Version(), runtimeVersion(), runtimeGOOS())
}

// runtimeVersion is extracted for testability.
var runtimeVersion = func() string { return runtime.Version() }

// runtimeGOOS is extracted for testability.
var runtimeGOOS = func() string { return runtime.GOOS }
