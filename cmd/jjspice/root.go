package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/jj-spice/internal/logging"
	"github.com/edp1096/jj-spice/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "jjspice",
	Short: "jjspice is an MNA circuit simulator with Josephson junctions",
	Long: `jjspice reads SPICE-style netlists with R, V, C, L and B (Josephson
junction) cards and runs .op, .dc or .tran analyses.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().String("solver", "", "dense or sparse (overrides config)")
}

// loadConfig reads --config, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("solver") {
		cfg.Solver, _ = cmd.Flags().GetString("solver")
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level)
}
