package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/security/secrets"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file with environment overrides and report every
invalid field. Secret references in provider API keys are resolved to check
that they exist; their values are never printed.

Examples:
  feedback config validate --config /etc/feedback/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			out := cmd.ErrOrStderr()
			fmt.Fprintf(out, "✗ %s is invalid:\n", cfgFile)
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "  - %s\n", fe.Error())
			}
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid (%s)\n", cfgFile)
	if err := checkSecretReferences(cmd, cfg); err != nil {
		fmt.Fprintf(out, "⚠️  %v\n", err)
	}
	fmt.Fprintf(out, "  analysis provider: %s\n", cfg.Analysis.Provider)
	fmt.Fprintf(out, "  providers with keys: %d\n", countKeyedProviders(cfg))
	if p := cfg.Providers[cfg.Analysis.Provider]; p.APIKey == "" {
		fmt.Fprintf(out, "⚠️  providers.%s.api_key is not set; the server will not start\n", cfg.Analysis.Provider)
	}
	return nil
}

func countKeyedProviders(cfg *config.Config) int {
	n := 0
	for _, p := range cfg.Providers {
		if p.APIKey != "" {
			n++
		}
	}
	return n
}

// checkSecretReferences resolves ${secret:name} references in provider keys.
func checkSecretReferences(cmd *cobra.Command, cfg *config.Config) error {
	resolver, err := secrets.FromConfig(cfg.Secrets)
	if err != nil {
		return err
	}
	defer resolver.Close()

	return resolver.ResolveProviderKeys(cmd.Context(), cfg)
}
