package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long: `Inspect the effective configuration.

Configuration hierarchy (highest to lowest priority):
1. Command flags
2. Environment variables (CHAOS_*, plus DATABASE_URL, JWT_SECRET and friends)
3. Config file (--config)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration as YAML",
	Long:  "Prints the configuration after defaults, the config file and environment variables are applied. Secrets are omitted.",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", cfgFile)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file given (defaults and environment)\n\n")
	}

	data, err := yaml.Marshal(appConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
