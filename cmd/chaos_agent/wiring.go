package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/chaos-engine/internal/bulk"
	"github.com/jonathan/chaos-engine/internal/config"
	"github.com/jonathan/chaos-engine/internal/humanize"
	"github.com/jonathan/chaos-engine/internal/llm"
	"github.com/jonathan/chaos-engine/internal/logging"
	"github.com/jonathan/chaos-engine/internal/server"
	"github.com/jonathan/chaos-engine/internal/wordpress"
)

// humanizeOptions converts the humanize config section.
func humanizeOptions(cfg *config.Config) humanize.Options {
	return humanize.Options{
		Passes:            cfg.Humanize.Passes,
		InterPassDelay:    cfg.Humanize.InterPassDelay,
		VoiceFrequency:    cfg.Humanize.VoiceFrequency,
		HedgeFrequency:    cfg.Humanize.HedgeFrequency,
		QuestionFrequency: cfg.Humanize.QuestionFrequency,
	}
}

// bulkConfig converts the bulk, wordpress and humanize sections.
func bulkConfig(cfg *config.Config) bulk.Config {
	bc := bulk.DefaultConfig()
	bc.Workers = cfg.Bulk.Workers
	bc.DocumentInterval = cfg.Bulk.DocumentInterval
	bc.Humanize = humanizeOptions(cfg)
	bc.Tier = llm.ModelTier(cfg.LLM.Tier)
	bc.Words = cfg.Bulk.Words
	bc.Audience = cfg.Bulk.Audience
	bc.Tone = cfg.Bulk.Tone
	bc.MetaDescription = cfg.Bulk.MetaDescription
	bc.PostStatus = cfg.WordPress.PostStatus
	return bc
}

// newGenerator builds the configured LLM client.
func newGenerator(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set CHAOS_LLM_API_KEY, GEMINI_API_KEY or OPENAI_API_KEY)")
	}
	llmCfg := llm.ConfigFor(cfg.LLM.Provider)
	llmCfg.BaseURL = cfg.LLM.BaseURL
	return llm.NewClient(ctx, llmCfg, cfg.LLM.APIKey)
}

// newPublisher returns nil when WordPress is not configured.
func newPublisher(cfg *config.Config) (*wordpress.Client, error) {
	if cfg.WordPress.URL == "" {
		return nil, nil
	}
	return wordpress.NewClient(cfg.WordPress.URL, cfg.WordPress.Username, cfg.WordPress.AppPassword,
		wordpress.WithLogger(logging.New("wordpress")))
}

// blogFactory builds a bulk runner per API request over a shared store,
// generator and publisher.
func blogFactory(cfg *config.Config, store bulk.JobStore, generator llm.Client, publisher *wordpress.Client) server.BlogRunnerFactory {
	return func(opts server.BlogRunOptions) (server.BlogRunner, error) {
		bc := bulkConfig(cfg)
		bc.DryRun = opts.DryRun
		bc.OnProgress = opts.OnProgress

		var pub bulk.Publisher
		if publisher != nil {
			pub = publisher
		} else if !opts.DryRun {
			return nil, &server.ErrUnavailable{Feature: "WordPress publishing"}
		}
		runner, err := bulk.NewRunner(store, generator, pub, bc, logging.New("bulk"))
		if err != nil {
			return nil, err
		}
		return runner, nil
	}
}

// openOutput returns stdout for "" or "-", otherwise creates path and its
// parent directory.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// writeOutput writes content and a trailing newline to path or stdout.
func writeOutput(path string, stdout io.Writer, content string) (err error) {
	out, closeOut, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); err == nil {
			err = cerr
		}
	}()
	if _, err := fmt.Fprintln(out, content); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// readInput reads path, or stdin for "-".
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}
