// Package bulk turns a list of keywords into published blog posts: each keyword
// is drafted by an LLM, humanized, checked for intact structure and published.
package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/jonathan/chaos-engine/internal/humanize"
	"github.com/jonathan/chaos-engine/internal/llm"
	"github.com/jonathan/chaos-engine/internal/logging"
	"github.com/jonathan/chaos-engine/internal/markup"
	"github.com/jonathan/chaos-engine/internal/prompts"
	"github.com/jonathan/chaos-engine/internal/types"
	"github.com/jonathan/chaos-engine/internal/wordpress"
)

// maxMetaDescription is the longest excerpt search engines show in full.
const maxMetaDescription = 155

// Publisher accepts finished articles. *wordpress.Client implements it.
type Publisher interface {
	CreatePost(ctx context.Context, p wordpress.Post) (*wordpress.PostResult, error)
}

// ProgressEvent reports a job status change.
type ProgressEvent struct {
	JobID   uuid.UUID           `json:"job_id"`
	Keyword string              `json:"keyword"`
	Status  types.BlogJobStatus `json:"status"`
	Message string              `json:"message,omitempty"`
}

// ProgressCallback is called after every recorded transition. Calls are
// serialized across workers.
type ProgressCallback func(event ProgressEvent)

// Config controls a bulk run.
type Config struct {
	// Workers is the number of documents processed at once.
	Workers int
	// DocumentInterval is the minimum spacing between document starts.
	DocumentInterval time.Duration
	Humanize         humanize.Options
	Tier             llm.ModelTier
	Words            int
	Audience         string
	Tone             string
	PostStatus       string
	// MetaDescription asks the model for a post excerpt instead of using the
	// first paragraph.
	MetaDescription bool
	// FeaturedMedia is an uploaded media ID attached to every post.
	FeaturedMedia int
	// Seed makes humanization reproducible; zero picks a random seed per worker.
	Seed uint64
	// DryRun skips publishing and leaves jobs in the ready state.
	DryRun     bool
	OnProgress ProgressCallback
}

// DefaultConfig returns settings for a sequential, publisher-friendly run.
func DefaultConfig() Config {
	return Config{
		Workers:          1,
		DocumentInterval: 30 * time.Second,
		Humanize:         humanize.DefaultOptions(),
		Tier:             llm.TierStandard,
		Words:            900,
		Audience:         "small business owners",
		Tone:             "friendly and practical",
		PostStatus:       wordpress.StatusDraft,
	}
}

// Summary counts job outcomes of a run.
type Summary struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Ready     int `json:"ready"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
	Fallbacks int `json:"fallbacks"`
}

// Runner executes blog jobs.
type Runner struct {
	store     JobStore
	generator llm.Client
	publisher Publisher
	cfg       Config
	logger    *slog.Logger
}

// NewRunner validates cfg and builds a Runner. publisher may be nil for dry runs.
func NewRunner(store JobStore, generator llm.Client, publisher Publisher, cfg Config, logger *slog.Logger) (*Runner, error) {
	if store == nil {
		return nil, fmt.Errorf("job store is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generation client is required")
	}
	if publisher == nil && !cfg.DryRun {
		return nil, fmt.Errorf("publisher is required unless running dry")
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.DocumentInterval < 0 {
		return nil, fmt.Errorf("document interval must not be negative")
	}
	if err := cfg.Humanize.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.OnProgress != nil {
		cfg.OnProgress = serialize(cfg.OnProgress)
	}
	return &Runner{store: store, generator: generator, publisher: publisher, cfg: cfg, logger: logger}, nil
}

// Enqueue creates a pending job per keyword.
func (r *Runner) Enqueue(ctx context.Context, userID uuid.UUID, keywords []string) ([]*types.BlogJob, error) {
	jobs := make([]*types.BlogJob, 0, len(keywords))
	for _, keyword := range keywords {
		job := &types.BlogJob{
			ID:      uuid.New(),
			UserID:  userID,
			Keyword: keyword,
			Status:  types.BlogJobPending,
		}
		if err := r.store.CreateBlogJob(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to create job for %q: %w", keyword, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Run processes jobs and blocks until they finish or ctx is cancelled.
// Cancellation is honoured at document boundaries: jobs not yet started stay
// pending and Run returns ctx.Err(). Individual job failures are recorded on
// the job and do not stop the run.
func (r *Runner) Run(ctx context.Context, jobs []*types.BlogJob) (*Summary, error) {
	limit := rate.Inf
	if r.cfg.DocumentInterval > 0 {
		limit = rate.Every(r.cfg.DocumentInterval)
	}
	limiter := rate.NewLimiter(limit, 1)

	engines := make(chan *humanize.Engine, r.cfg.Workers)
	for i := 0; i < r.cfg.Workers; i++ {
		engine, err := r.newEngine(i)
		if err != nil {
			return nil, err
		}
		engines <- engine
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)

	var runErr error
	for _, job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			runErr = ctx.Err()
			if runErr == nil {
				runErr = err
			}
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			engine := <-engines
			defer func() { engines <- engine }()
			r.process(ctx, engine, job)
			return nil
		})
	}
	_ = g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	summary := summarize(jobs)
	r.logger.Info("bulk run finished",
		slog.Int("total", summary.Total),
		slog.Int("published", summary.Published),
		slog.Int("ready", summary.Ready),
		slog.Int("failed", summary.Failed),
		slog.Int("pending", summary.Pending),
		slog.Int("fallbacks", summary.Fallbacks))
	return summary, runErr
}

func (r *Runner) newEngine(worker int) (*humanize.Engine, error) {
	seed := r.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	} else {
		seed += uint64(worker)
	}
	return humanize.NewSeeded(seed, humanize.WithLogger(r.logger.With(slog.Int("worker", worker))))
}

func (r *Runner) process(ctx context.Context, engine *humanize.Engine, job *types.BlogJob) {
	logger := r.logger.With(slog.String("job_id", job.ID.String()), slog.String("keyword", job.Keyword))

	if err := r.transition(ctx, job, types.BlogJobGenerating, ""); err != nil {
		r.fail(ctx, logger, job, err)
		return
	}

	draft, err := r.generate(ctx, job.Keyword)
	if err != nil {
		r.fail(ctx, logger, job, err)
		return
	}

	text, usedFallback, err := r.humanize(ctx, engine, draft)
	if err != nil {
		r.fail(ctx, logger, job, &Error{Keyword: job.Keyword, Stage: StageHumanize, Message: "humanization aborted", Cause: err})
		return
	}
	score := humanize.AnalyzeRisk(text).Score
	job.Content = text
	job.Title = markup.Title(text)
	post := wordpress.Post{Content: text, Status: r.cfg.PostStatus, FeaturedMedia: r.cfg.FeaturedMedia}
	if job.Title == "" {
		job.Title = r.suggestTitle(ctx, logger, job.Keyword)
		post.Title = job.Title
	}
	job.UsedFallback = usedFallback
	job.RiskScore = &score
	if usedFallback {
		logger.Warn("structure check failed, used lexical fallback")
	}

	if r.cfg.DryRun {
		if err := r.transition(ctx, job, types.BlogJobReady, "dry run"); err != nil {
			r.fail(ctx, logger, job, err)
		}
		return
	}

	if err := r.transition(ctx, job, types.BlogJobPublishing, ""); err != nil {
		r.fail(ctx, logger, job, err)
		return
	}
	if r.cfg.MetaDescription {
		post.Excerpt = r.describe(ctx, logger, job.Title)
	}
	result, err := r.publisher.CreatePost(ctx, post)
	if err != nil {
		r.fail(ctx, logger, job, &Error{Keyword: job.Keyword, Stage: StagePublish, Message: "publishing failed", Cause: err})
		return
	}

	postID := result.ID
	job.PostID = &postID
	job.PostURL = result.Link
	if err := r.transition(ctx, job, types.BlogJobPublished, result.Link); err != nil {
		r.fail(ctx, logger, job, err)
		return
	}
	logger.Info("published", slog.Int("post_id", result.ID), slog.Int("risk_score", score))
}

func (r *Runner) generate(ctx context.Context, keyword string) (string, error) {
	prompt, err := prompts.Render(prompts.Blog, "blog-article", map[string]string{
		"Keyword":  keyword,
		"Words":    strconv.Itoa(r.cfg.Words),
		"Audience": r.cfg.Audience,
		"Tone":     r.cfg.Tone,
	})
	if err != nil {
		return "", &Error{Keyword: keyword, Stage: StageGenerate, Message: "failed to build prompt", Cause: err}
	}

	raw, err := r.generator.GenerateContent(ctx, prompt, r.cfg.Tier)
	if err != nil {
		return "", &Error{Keyword: keyword, Stage: StageGenerate, Message: "generation failed", Cause: err}
	}
	draft := llm.CleanHTMLBlock(raw)
	if draft == "" {
		return "", &Error{Keyword: keyword, Stage: StageGenerate, Message: "model returned no content"}
	}
	return draft, nil
}

// suggestTitle asks the model for a title when the draft has no <h1>. The
// keyword itself is used if that fails.
func (r *Runner) suggestTitle(ctx context.Context, logger *slog.Logger, keyword string) string {
	fallback := cases.Title(language.English).String(keyword)
	title, err := r.shortAnswer(ctx, "blog-title", map[string]string{"Keyword": keyword})
	if err != nil || title == "" {
		logger.Warn("title suggestion failed, using keyword", slog.Any("error", err))
		return fallback
	}
	return title
}

// describe returns a model-written excerpt, or "" so the publisher derives one
// from the first paragraph.
func (r *Runner) describe(ctx context.Context, logger *slog.Logger, title string) string {
	description, err := r.shortAnswer(ctx, "meta-description", map[string]string{"Title": title})
	if err != nil {
		logger.Warn("meta description failed", slog.String("error", err.Error()))
		return ""
	}
	if utf8.RuneCountInString(description) > maxMetaDescription {
		logger.Warn("meta description too long, dropped", slog.Int("length", utf8.RuneCountInString(description)))
		return ""
	}
	return description
}

// shortAnswer renders a single-line prompt and returns the first line of the
// reply without surrounding quotes.
func (r *Runner) shortAnswer(ctx context.Context, key string, data map[string]string) (string, error) {
	prompt, err := prompts.Render(prompts.Blog, key, data)
	if err != nil {
		return "", err
	}
	raw, err := r.generator.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(raw), "\n")
	return strings.Trim(strings.TrimSpace(line), `"'`), nil
}

// humanize runs the full pipeline and falls back to substitution-only output
// when the pipeline fails or changes the block structure.
func (r *Runner) humanize(ctx context.Context, engine *humanize.Engine, draft string) (string, bool, error) {
	result, err := engine.Transform(ctx, draft, r.cfg.Humanize)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		r.logger.Warn("humanize failed, using fallback", slog.String("error", err.Error()))
		return engine.Fallback(draft), true, nil
	}

	before, err := markup.Inspect(draft)
	if err != nil {
		return engine.Fallback(draft), true, nil
	}
	after, err := markup.Inspect(result.Text)
	if err != nil || !before.SameShape(after) {
		return engine.Fallback(draft), true, nil
	}
	return result.Text, false, nil
}

func (r *Runner) transition(ctx context.Context, job *types.BlogJob, status types.BlogJobStatus, message string) error {
	job.Status = status
	if err := r.store.UpdateBlogJob(ctx, job); err != nil {
		return &Error{Keyword: job.Keyword, Stage: StageStore, Message: "failed to record status " + string(status), Cause: err}
	}
	r.emit(job, message)
	return nil
}

// fail records the failure even if ctx has been cancelled.
func (r *Runner) fail(ctx context.Context, logger *slog.Logger, job *types.BlogJob, cause error) {
	job.Status = types.BlogJobFailed
	job.Error = cause.Error()
	logger.Error("job failed", slog.String("error", job.Error))

	if err := r.store.UpdateBlogJob(context.WithoutCancel(ctx), job); err != nil {
		logger.Error("failed to record job failure", slog.String("error", err.Error()))
	}
	r.emit(job, job.Error)
}

func (r *Runner) emit(job *types.BlogJob, message string) {
	if r.cfg.OnProgress == nil {
		return
	}
	r.cfg.OnProgress(ProgressEvent{JobID: job.ID, Keyword: job.Keyword, Status: job.Status, Message: message})
}

func summarize(jobs []*types.BlogJob) *Summary {
	s := &Summary{Total: len(jobs)}
	for _, job := range jobs {
		switch job.Status {
		case types.BlogJobPublished:
			s.Published++
		case types.BlogJobReady:
			s.Ready++
		case types.BlogJobFailed:
			s.Failed++
		case types.BlogJobPending:
			s.Pending++
		}
		if job.UsedFallback {
			s.Fallbacks++
		}
	}
	return s
}

func serialize(fn ProgressCallback) ProgressCallback {
	var mu sync.Mutex
	return func(event ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		fn(event)
	}
}
