package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/nestly/internal/config"
	"github.com/agentic-research/nestly/internal/logging"
	"github.com/agentic-research/nestly/internal/nest"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// Resolved in PersistentPreRunE.
	settings *config.Settings
	logger   = zap.NewNop()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to settings file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json)")
}

var rootCmd = &cobra.Command{
	Use:           "nestly",
	Short:         "nestly: nested parameter-sweep directory trees",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSettings(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			s.Log.Level = logLevel
		}
		if logFormat != "" {
			s.Log.Format = logFormat
		}
		l, err := logging.New(s.Log)
		if err != nil {
			return err
		}
		settings, logger = s, l
		return nil
	},
}

// loadNest reads a sweep file and registers its levels.
func loadNest(path string) (*nest.Nest, error) {
	sweep, err := config.LoadSweep(path)
	if err != nil {
		return nil, err
	}
	return config.NewNest(sweep, logger)
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
