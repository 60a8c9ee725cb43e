package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/chaos-engine/internal/humanize"
	"github.com/jonathan/chaos-engine/internal/observability"
	"github.com/jonathan/chaos-engine/internal/schemas"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a document's AI-detection risk",
	Long:  "Scores a document from 0 to 100 using vocabulary, sentence-length variation, list shape, negation and closing-phrase heuristics. Higher is safer.",
	RunE:  runAnalyze,
}

var (
	analyzeInputFile string
	analyzeJSON      bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInputFile, "in", "i", "", "Path to input document, or - for stdin (required)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Write the report as JSON")

	if err := analyzeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	text, err := readInput(analyzeInputFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	report := humanize.AnalyzeRisk(text)

	if !analyzeJSON {
		observability.NewPrinter(cmd.OutOrStdout()).PrintRiskReport(&report)
		return nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := schemas.ValidateDocument(schemas.RiskReport, data); err != nil {
		return fmt.Errorf("report failed schema validation: %w", err)
	}
	return writeOutput("", cmd.OutOrStdout(), string(data))
}
