// Package humanize implements the Chaos Engine: a sequence of randomized
// string-rewrite passes that make generated HTML-ish prose read less like
// model output, plus a heuristic scorer for detection risk.
//
// Passes are pure functions of (text, options, random source). The lookup
// tables are package-level and read-only, so independent Engines may run
// concurrently. A single Engine is not safe for concurrent use because it owns
// its random source.
package humanize

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Stage names reported in Result.Stages.
const (
	StageVocabulary = "vocabulary-structure"
	StageVoice      = "voice"
	StageFlow       = "flow"
)

var (
	vocabulary   = mustLexicon(markedVocabulary)
	contractions = mustLexicon(contractionTable).withClauseFinal(clauseFinalTerms)
	negations    = phraseLexicon(negationPhrases)
)

// Vocabulary returns the compiled marked-vocabulary lexicon.
func Vocabulary() *Lexicon {
	return vocabulary
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Engine runs the humanization passes with an injected random source.
type Engine struct {
	rng         *rand.Rand
	vocabulary  *Lexicon
	listPattern *regexp.Regexp
	logger      *slog.Logger
	sleep       Sleeper
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

// WithSleeper replaces the inter-stage delay implementation.
func WithSleeper(s Sleeper) EngineOption {
	return func(e *Engine) error {
		if s != nil {
			e.sleep = s
		}
		return nil
	}
}

// WithListNouns replaces the plural nouns recognized by the list-cardinality pass.
func WithListNouns(nouns []string) EngineOption {
	return func(e *Engine) error {
		if len(nouns) == 0 {
			return &PreconditionError{Field: "list_nouns", Message: "must not be empty"}
		}
		pattern, err := compileListPattern(nouns)
		if err != nil {
			return &PreconditionError{Field: "list_nouns", Message: "invalid noun list", Cause: err}
		}
		e.listPattern = pattern
		return nil
	}
}

// WithVocabulary replaces the marked-vocabulary lexicon used for substitution.
// AnalyzeRisk always scores against the built-in table.
func WithVocabulary(lex *Lexicon) EngineOption {
	return func(e *Engine) error {
		if lex == nil {
			return &PreconditionError{Field: "vocabulary", Message: "must not be nil"}
		}
		e.vocabulary = lex
		return nil
	}
}

// New creates an Engine drawing all random choices from rng.
func New(rng *rand.Rand, opts ...EngineOption) (*Engine, error) {
	if rng == nil {
		return nil, &PreconditionError{Field: "rng", Message: "random source is required"}
	}

	listPattern, err := compileListPattern(defaultListNouns)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		rng:         rng,
		vocabulary:  vocabulary,
		listPattern: listPattern,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// NewSeeded creates an Engine with a PCG source built from seed.
func NewSeeded(seed uint64, opts ...EngineOption) (*Engine, error) {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), opts...)
}

// Result is the output of Transform.
type Result struct {
	Text          string     `json:"text"`
	Burstiness    Burstiness `json:"burstiness"`
	PassesApplied int        `json:"passes_applied"`
	Replacements  int        `json:"replacements"`
	Stages        []string   `json:"stages"`
}

// Transform runs up to three stages over text and returns the cleaned result.
// Stage 1 always runs; stages 2 and 3 run when opts.Passes allows. The
// inter-stage delay honours ctx; a cancelled context returns ctx.Err().
func (e *Engine) Transform(ctx context.Context, text string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !utf8.ValidString(text) {
		return nil, &PreconditionError{Field: "text", Message: "must be valid UTF-8"}
	}

	text = norm.NFC.String(text)
	result := &Result{Stages: make([]string, 0, opts.Passes)}

	text, n := e.vocabularyStage(text)
	result.Replacements += n
	result.Stages = append(result.Stages, StageVocabulary)

	if opts.Passes >= 2 {
		if err := e.sleep(ctx, opts.InterPassDelay); err != nil {
			return nil, err
		}
		text = e.voiceStage(text, opts)
		result.Stages = append(result.Stages, StageVoice)
	}

	if opts.Passes >= 3 {
		if err := e.sleep(ctx, opts.InterPassDelay); err != nil {
			return nil, err
		}
		text, n = e.flowStage(text)
		result.Replacements += n
		result.Stages = append(result.Stages, StageFlow)
	}

	result.Text = cleanup(text)
	result.Burstiness = ComputeBurstiness(result.Text)
	result.PassesApplied = len(result.Stages)
	return result, nil
}

// Fallback is the reduced pipeline for callers whose full Transform failed:
// vocabulary substitution followed by cleanup.
func (e *Engine) Fallback(text string) string {
	text, _ = e.Substitute(norm.NFC.String(text))
	return cleanup(text)
}

func (e *Engine) vocabularyStage(text string) (string, int) {
	text, replaced := e.Substitute(text)
	text, contracted := e.FoldContractions(text)
	text, lists := e.BiasListCardinality(text)
	text, headings := e.RelabelHeadings(text)
	e.logger.Debug("stage complete",
		slog.String("stage", StageVocabulary),
		slog.Int("replacements", replaced),
		slog.Int("contractions", contracted),
		slog.Int("lists", lists),
		slog.Int("headings", headings))
	return text, replaced
}

func (e *Engine) voiceStage(text string, opts Options) string {
	text, jumps := e.BreakSymmetry(text)
	text, voice := e.InjectVoice(text, opts.VoiceFrequency)
	text, questions := e.InjectQuestions(text, opts.QuestionFrequency)
	text, hedged := e.InjectHedges(text, opts.HedgeFrequency)
	e.logger.Debug("stage complete",
		slog.String("stage", StageVoice),
		slog.Int("interjections", jumps),
		slog.Int("starters", voice),
		slog.Int("questions", questions),
		slog.Int("hedges", hedged))
	return text
}

func (e *Engine) flowStage(text string) (string, int) {
	text, friction := e.AddPunctuationFriction(text)
	text, splits := e.RebalanceBurstiness(text)
	text, replaced := e.Substitute(text)
	e.logger.Debug("stage complete",
		slog.String("stage", StageFlow),
		slog.Int("punctuation", friction),
		slog.Int("splits", splits),
		slog.Int("replacements", replaced))
	return text, replaced
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
