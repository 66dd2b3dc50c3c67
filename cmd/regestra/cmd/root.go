// Package cmd provides the CLI commands for Regestra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/regestra/regestra/internal/archive"
	"github.com/regestra/regestra/internal/config"
	apperr "github.com/regestra/regestra/internal/errors"
	"github.com/regestra/regestra/internal/logging"
	"github.com/regestra/regestra/internal/profiling"
	"github.com/regestra/regestra/internal/signature"
	"github.com/regestra/regestra/internal/store"
	"github.com/regestra/regestra/internal/ui"
	"github.com/regestra/regestra/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	noColor        bool
	loggingCleanup func()

	profileCPU string
	profileMem string
	cpuStop    func()
)

// NewRootCmd creates the root command for the regestra CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regestra",
		Short: "Archive signature and search backend",
		Long: `Regestra manages archive documents with hierarchical signatures.

Signature components define numbering schemes (decimal, roman, alphabetic);
their elements form the classification tree that documents are filed under.
Documents and elements are searched with abstract field/condition queries
compiled to SQL.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("regestra version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(),
		"Path to the YAML config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"Enable debug logging to ~/.regestra/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "",
		"Write a CPU profile to the given file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "",
		"Write a heap profile to the given file on exit")

	cmd.PersistentPreRunE = startDiagnostics
	cmd.PersistentPostRunE = stopDiagnostics

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newComponentCmd())
	cmd.AddCommand(newElementCmd())
	cmd.AddCommand(newTagCmd())
	cmd.AddCommand(newReindexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints errors in the structured form.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apperr.FormatForCLI(err))
		return err
	}
	return nil
}

func startDiagnostics(_ *cobra.Command, _ []string) error {
	if profileCPU != "" {
		stop, err := profiling.StartCPU(profileCPU)
		if err != nil {
			return err
		}
		cpuStop = stop
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.FilePath,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxFiles:      cfg.Logging.MaxFiles,
		WriteToStderr: false,
	}
	if debugMode {
		logCfg.Level = "debug"
		logCfg.WriteToStderr = true
	}
	if logCfg.FilePath == "" {
		logCfg.FilePath = logging.DefaultLogPath()
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		// Logging must never block the actual command.
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		return nil
	}
	slog.SetDefault(logger)
	loggingCleanup = cleanup
	return nil
}

func stopDiagnostics(_ *cobra.Command, _ []string) error {
	if cpuStop != nil {
		cpuStop()
		cpuStop = nil
	}
	var err error
	if profileMem != "" {
		err = profiling.WriteHeap(profileMem)
	}
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return err
}

// appEnv bundles the opened stores for one command invocation.
type appEnv struct {
	cfg        *config.Config
	db         *store.DB
	components *signature.ComponentStore
	elements   *signature.ElementStore
	documents  *archive.DocumentStore
	tags       *archive.TagStore
	styles     ui.Styles
}

// openEnv loads config and opens the database with all stores wired.
// The caller must Close.
func openEnv() (*appEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Storage.Path, cfg.Storage.BusyTimeoutMS)
	if err != nil {
		return nil, err
	}

	elements, err := signature.NewElementStore(db, cfg.Search.LabelCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	styles := ui.DefaultStyles()
	if noColor || os.Getenv("NO_COLOR") != "" {
		styles = ui.NoColorStyles()
	}

	return &appEnv{
		cfg:        cfg,
		db:         db,
		components: signature.NewComponentStore(db),
		elements:   elements,
		documents:  archive.NewDocumentStore(db, elements),
		tags:       archive.NewTagStore(db),
		styles:     styles,
	}, nil
}

func (e *appEnv) Close() {
	if err := e.db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".regestra", "config.yaml")
	}
	return filepath.Join(home, ".regestra", "config.yaml")
}
