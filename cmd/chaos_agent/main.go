// Package main implements the chaos_agent CLI: the HTTP API server plus the
// offline humanize, analyze and bulk generation commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/chaos-engine/internal/config"
	"github.com/jonathan/chaos-engine/internal/logging"
)

var (
	cfgFile   string
	verbose   bool
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "chaos_agent",
	Short:             "Chaos Engine content humanization service",
	Long:              "Chaos Engine rewrites generated marketing copy so it reads less like model output, scores detection risk, and drafts and publishes blog posts in bulk.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print summary boxes to stderr")
}

// loadConfig resolves the effective configuration and installs the logger.
func loadConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("config error: 'log_level': %w", err)
	}
	logging.Init(level, cfg.LogFormat)
	appConfig = cfg
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
