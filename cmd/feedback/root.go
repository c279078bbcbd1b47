package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mercator-hq/feedback/pkg/cli"
	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Feedback Analyzer - LLM sentiment analysis API",
	Long: `Feedback Analyzer is an HTTP API that turns free-form customer feedback
into a sentiment label, a 1-10 score, improvement suggestions and a summary.

Accounts authenticate with an API key, are rate limited per minute and are
bound by a lifetime request quota. Results are cached by text fingerprint
and every analysis is kept in the account's history.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config (missing file is ignored)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadEnvFile exports the variables of a dotenv file. Variables already
// present in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadConfig reads the configuration file with environment overrides. A
// missing file yields defaults plus environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}

// setupLogging installs the configured logger as the slog default. Commands
// that print results to stdout pass os.Stderr.
func setupLogging(cfg *config.Config, w io.Writer) (*logging.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	lc.Writer = w

	logger, err := logging.New(lc)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	if verbose {
		_ = logger.SetLevel("debug")
	}

	slog.SetDefault(logger.Logger)
	return logger, nil
}
