package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePLD/internal/config"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/device"
	"github.com/OpenTraceLab/OpenTracePLD/pkg/export"
)

var (
	// Global flags
	verbose    bool
	configPath string
	catalogDir string
)

// Set up by the root command before any subcommand runs.
var (
	cfg      *config.Config
	log      = logrus.New()
	catalog  *device.Catalog
	registry *export.Registry
	fs       afero.Fs = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "pldexport",
	Short: "Export truth tables to PLD fuse maps and TT2 files",
	Long: `Export a truth table and its minimized expressions into files a
programmable logic toolchain understands: JEDEC fuse maps for the built-in
PLA devices (or devices from a catalog directory) and TT2 truth tables.

Examples:
  pldexport export counter.toml --target tt2          # Write counter.tt2
  pldexport export 'designs/**/*.toml' -t jed-pla16v8  # Export every project
  pldexport verify counter.jed --project counter.toml  # Check a written file
  pldexport targets                                    # List output formats`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/pldexport/config.toml)")
	rootCmd.PersistentFlags().StringVar(&catalogDir, "catalog", "", "directory of device descriptor files (*.toml)")
}

func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = c

	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, _ := cfg.Level()
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	catalog = device.Builtin()
	dir := catalogDir
	if dir == "" {
		dir = cfg.CatalogDir
	}
	if dir != "" {
		if err := catalog.LoadDir(dir); err != nil {
			return fmt.Errorf("failed to load device catalog: %w", err)
		}
		log.WithField("dir", dir).Debug("loaded device catalog")
	}
	registry = export.NewRegistry(catalog)
	return nil
}
