package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/chaos-engine/internal/bulk"
	"github.com/jonathan/chaos-engine/internal/db"
	"github.com/jonathan/chaos-engine/internal/logging"
	"github.com/jonathan/chaos-engine/internal/observability"
	"github.com/jonathan/chaos-engine/internal/wordpress"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Generate, humanize and publish one blog post per keyword",
	Long: `Reads keywords from the first column of a CSV file, drafts an article for each
with the configured LLM, humanizes it and publishes it to WordPress.

Documents are started no faster than bulk.document_interval. Interrupting the
run leaves unstarted jobs pending.`,
	RunE: runBulk,
}

var (
	bulkKeywordsFile string
	bulkWorkers      int
	bulkDryRun       bool
	bulkSeed         int64
	bulkInterval     time.Duration
	bulkOutputFile   string
	bulkPersist      bool
	bulkUserID       string
	bulkFeatured     string
	bulkMeta         bool
)

func init() {
	bulkCmd.Flags().StringVarP(&bulkKeywordsFile, "keywords", "k", "", "Path to keywords CSV (required)")
	bulkCmd.Flags().IntVar(&bulkWorkers, "workers", 0, "Documents processed at once (default from config)")
	bulkCmd.Flags().BoolVar(&bulkDryRun, "dry-run", false, "Generate and humanize without publishing")
	bulkCmd.Flags().Int64Var(&bulkSeed, "seed", -1, "Random seed for humanization (default random)")
	bulkCmd.Flags().DurationVar(&bulkInterval, "interval", -1, "Minimum spacing between documents (default from config)")
	bulkCmd.Flags().StringVarP(&bulkOutputFile, "out", "o", "", "Write the final jobs as JSON to this path")
	bulkCmd.Flags().BoolVar(&bulkPersist, "persist", false, "Record jobs in the database instead of memory")
	bulkCmd.Flags().StringVar(&bulkUserID, "user", "", "Owner user ID for persisted jobs")
	bulkCmd.Flags().StringVar(&bulkFeatured, "featured-image", "", "Image uploaded once and set as every post's featured media")
	bulkCmd.Flags().BoolVar(&bulkMeta, "meta-description", false, "Ask the model for each post's excerpt (default from config)")

	if err := bulkCmd.MarkFlagRequired("keywords"); err != nil {
		panic(fmt.Sprintf("failed to mark keywords flag as required: %v", err))
	}

	rootCmd.AddCommand(bulkCmd)
}

func runBulk(cmd *cobra.Command, _ []string) error {
	keywords, err := loadKeywords(bulkKeywordsFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store  bulk.JobStore = bulk.NewMemoryStore()
		userID uuid.UUID
	)
	if bulkPersist {
		userID, err = uuid.Parse(bulkUserID)
		if err != nil {
			return fmt.Errorf("--persist requires a valid --user ID: %w", err)
		}
		database, err := db.Connect(ctx, appConfig.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		store = database
	}

	generator, err := newGenerator(ctx, appConfig)
	if err != nil {
		return err
	}
	defer func() { _ = generator.Close() }()

	var (
		publisher     bulk.Publisher
		featuredMedia int
	)
	if !bulkDryRun {
		wp, err := newPublisher(appConfig)
		if err != nil {
			return fmt.Errorf("failed to create WordPress client: %w", err)
		}
		if wp == nil {
			return fmt.Errorf("WordPress is not configured (set CHAOS_WORDPRESS_URL) or use --dry-run")
		}
		publisher = wp
		if bulkFeatured != "" {
			featuredMedia, err = uploadFeaturedImage(ctx, wp, bulkFeatured)
			if err != nil {
				return err
			}
		}
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	cfg := bulkConfig(appConfig)
	cfg.DryRun = bulkDryRun
	cfg.OnProgress = printer.PrintProgress
	cfg.FeaturedMedia = featuredMedia
	if cmd.Flags().Changed("meta-description") {
		cfg.MetaDescription = bulkMeta
	}
	if bulkWorkers > 0 {
		cfg.Workers = bulkWorkers
	}
	if bulkInterval >= 0 {
		cfg.DocumentInterval = bulkInterval
	}
	if bulkSeed >= 0 {
		cfg.Seed = uint64(bulkSeed)
	}

	runner, err := bulk.NewRunner(store, generator, publisher, cfg, logging.New("bulk"))
	if err != nil {
		return err
	}
	jobs, err := runner.Enqueue(ctx, userID, keywords)
	if err != nil {
		return err
	}
	summary, runErr := runner.Run(ctx, jobs)

	if bulkOutputFile != "" {
		data, err := json.MarshalIndent(jobs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal jobs: %w", err)
		}
		if err := writeOutput(bulkOutputFile, cmd.OutOrStdout(), string(data)); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("bulk run interrupted: %w", runErr)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintBulkSummary(summary)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", summary.Failed, summary.Total)
	}
	return nil
}

// mediaUploader is the part of *wordpress.Client used for featured images.
type mediaUploader interface {
	UploadMedia(ctx context.Context, filename string, data []byte) (*wordpress.Media, error)
}

func uploadFeaturedImage(ctx context.Context, uploader mediaUploader, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read featured image: %w", err)
	}
	media, err := uploader.UploadMedia(ctx, filepath.Base(path), data)
	if err != nil {
		return 0, fmt.Errorf("failed to upload featured image: %w", err)
	}
	return media.ID, nil
}

func loadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keywords file: %w", err)
	}
	defer f.Close()

	keywords, err := bulk.ReadKeywords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return keywords, nil
}
