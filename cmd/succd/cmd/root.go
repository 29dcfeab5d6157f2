package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdlab/succd/pkg/config"
	"github.com/sdlab/succd/pkg/telemetry"
	"github.com/sdlab/succd/pkg/utils"
)

var (
	// Global flags
	cfgPath string
	verbose bool
	logger  utils.Logger

	// The loaded configuration, available to every subcommand once
	// PersistentPreRunE has run.
	cfg *config.Config

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "succd",
	Short: "Asynchronous Boolean network succession-diagram analyzer",
	Long: `succd analyzes the succession diagram of an asynchronous Boolean
network: it enumerates trap spaces, identifies attractors (including
motif-avoidant ones not captured by any single minimal trap space), and
answers control queries asking for minimal driver sets that steer the
network into a chosen target trap space.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		logLevel := utils.ParseLogLevel(loaded.Log.Level)
		if loaded.Debug || verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		cfg = loaded

		shutdown, err := telemetry.Init(context.Background())
		if err != nil {
			logger.Warn("telemetry initialization failed: %v", err)
			shutdown = func(context.Context) error { return nil }
		}
		telemetryShutdown = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(context.Background())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to succd.yaml configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")

	binName := BinName()
	rootCmd.Example = `  # Enumerate the succession diagram and attractors of a .bnet network
  ` + binName + ` analyze -i network.bnet

  # Same, using the "name = expr" input format
  ` + binName + ` analyze -i network.txt --format exprlist

  # Find a minimum driver set steering the network into A=1,B=1
  ` + binName + ` control -i network.bnet --target A=1,B=1

  # Enumerate every minimal driver set instead of stopping at the first
  ` + binName + ` control -i network.bnet --target A=1,B=1 --mode all`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger { return logger }

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config { return cfg }

// BinName returns the base name of the current executable.
func BinName() string { return filepath.Base(os.Args[0]) }
