package humanize

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<h1>Growing Your Audience</h1>

<p>It is important to note that most brands leverage the same three channels, and they do not stop to ask whether those channels still work for their readers today.</p>

<h2>Three Key Ways to Grow</h2>

<ul>
<li>Publish on a schedule your team can sustain</li>
<li>Answer the questions your customers actually ask</li>
<li>Measure what readers do, not what they say</li>
</ul>

<p>Furthermore, a robust editorial calendar is crucial for small teams. The calendar, which is easy to build, keeps everyone honest about deadlines and topics. Our marketing team reviewed every single campaign we launched during the busy spring season this year. The results showed that shorter emails consistently earned more clicks than the longer newsletters we sent out.</p>

<blockquote>Consistency beats intensity every single time.</blockquote>

<p>Many teams delve into analytics too early and lose sight of the story they want to tell. It is easy to chase numbers. It is harder to build trust with a reader who comes back every week because the writing feels like a person wrote it.</p>

<h2 id="conclusion">Conclusion</h2>

<p>In conclusion, you should keep experimenting with formats and cadence until you find a rhythm that your audience responds to over time.</p>`

var structureTags = []*regexp.Regexp{
	regexp.MustCompile(`<h[1-6][^>]*>`),
	regexp.MustCompile(`</h[1-6]>`),
	regexp.MustCompile(`<li\b`),
	regexp.MustCompile(`</li>`),
	regexp.MustCompile(`<ul\b`),
	regexp.MustCompile(`<blockquote\b`),
	regexp.MustCompile(`<p\b`),
	regexp.MustCompile(`</p>`),
}

func noDelay() Options {
	opts := DefaultOptions()
	opts.InterPassDelay = 0
	return opts
}

func blockCount(text string) int {
	n := 0
	for _, p := range splitParagraphs(text) {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func TestNew_RequiresRandomSource(t *testing.T) {
	_, err := New(nil)
	var pe *PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "rng", pe.Field)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		field  string
	}{
		{name: "zero passes", mutate: func(o *Options) { o.Passes = 0 }, field: "passes"},
		{name: "four passes", mutate: func(o *Options) { o.Passes = 4 }, field: "passes"},
		{name: "negative delay", mutate: func(o *Options) { o.InterPassDelay = -time.Millisecond }, field: "inter_pass_delay"},
		{name: "voice above one", mutate: func(o *Options) { o.VoiceFrequency = 1.5 }, field: "voice_frequency"},
		{name: "negative hedge", mutate: func(o *Options) { o.HedgeFrequency = -0.1 }, field: "hedge_frequency"},
		{name: "NaN question", mutate: func(o *Options) { o.QuestionFrequency = math.NaN() }, field: "question_frequency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			var pe *PreconditionError
			require.True(t, errors.As(err, &pe), "expected PreconditionError, got %v", err)
			assert.Equal(t, tt.field, pe.Field)
		})
	}

	assert.NoError(t, DefaultOptions().Validate())
}

func TestTransform_RejectsInvalidInput(t *testing.T) {
	e := newTestEngine(t, 1)

	_, err := e.Transform(context.Background(), "bad \xff byte", noDelay())
	var pe *PreconditionError
	assert.True(t, errors.As(err, &pe))

	opts := noDelay()
	opts.Passes = 5
	_, err = e.Transform(context.Background(), "fine", opts)
	assert.True(t, errors.As(err, &pe))
}

func TestTransform_SinglePassScenario(t *testing.T) {
	in := "I think you should leverage your network to delve into new opportunities. Furthermore, this is crucial."
	banned := regexp.MustCompile(`(?i)\b(leverage|delve|furthermore|crucial)\b`)

	for seed := uint64(0); seed < 25; seed++ {
		opts := noDelay()
		opts.Passes = 1
		result, err := newTestEngine(t, seed).Transform(context.Background(), in, opts)
		require.NoError(t, err)

		assert.False(t, banned.MatchString(result.Text), result.Text)
		assert.Len(t, splitSentences(result.Text), 2, result.Text)
		assert.Equal(t, 1, result.PassesApplied)
		assert.Equal(t, []string{StageVocabulary}, result.Stages)
		assert.Equal(t, 4, result.Replacements)
	}
}

func TestTransform_StagesAndDelays(t *testing.T) {
	for passes := MinPasses; passes <= MaxPasses; passes++ {
		var waits []time.Duration
		sleeper := func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}
		e := newTestEngine(t, 3, WithSleeper(sleeper))

		opts := DefaultOptions()
		opts.Passes = passes
		result, err := e.Transform(context.Background(), sampleDocument, opts)
		require.NoError(t, err)

		assert.Equal(t, passes, result.PassesApplied)
		assert.Len(t, result.Stages, passes)
		assert.Len(t, waits, passes-1)
		for _, w := range waits {
			assert.Equal(t, DefaultInterPassDelay, w)
		}
	}
}

func TestTransform_CancelledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(t, 1).Transform(ctx, sampleDocument, noDelay())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransform_PreservesStructure(t *testing.T) {
	opts := noDelay()
	opts.VoiceFrequency = 1
	opts.HedgeFrequency = 1
	opts.QuestionFrequency = 1

	for seed := uint64(0); seed < 50; seed++ {
		result, err := newTestEngine(t, seed).Transform(context.Background(), sampleDocument, opts)
		require.NoError(t, err)

		for _, re := range structureTags {
			assert.Equal(t, len(re.FindAllStringIndex(sampleDocument, -1)), len(re.FindAllStringIndex(result.Text, -1)),
				"seed %d changed the count of %s", seed, re)
		}
		assert.Equal(t, blockCount(sampleDocument), blockCount(result.Text), "seed %d changed paragraph count", seed)
	}
}

func TestTransform_FullPipelineClearsVocabulary(t *testing.T) {
	result, err := newTestEngine(t, 42).Transform(context.Background(), sampleDocument, noDelay())
	require.NoError(t, err)

	assert.Zero(t, vocabulary.Count(result.Text), result.Text)
	assert.NotContains(t, result.Text, "<h2 id=\"conclusion\">Conclusion</h2>")
	assert.NotContains(t, result.Text, "In conclusion,")
	assert.NotContains(t, result.Text, "Three Key Ways")
	assert.NotContains(t, result.Text, "  ")
	assert.Positive(t, result.Replacements)
	assert.Positive(t, result.Burstiness.Sentences)
}

func TestTransform_DeterministicForSeed(t *testing.T) {
	a, err := newTestEngine(t, 99).Transform(context.Background(), sampleDocument, noDelay())
	require.NoError(t, err)
	b, err := newTestEngine(t, 99).Transform(context.Background(), sampleDocument, noDelay())
	require.NoError(t, err)
	assert.Equal(t, a.Text, b.Text)
}

func TestTransform_LowersRisk(t *testing.T) {
	before := AnalyzeRisk(sampleDocument)
	result, err := newTestEngine(t, 7).Transform(context.Background(), sampleDocument, noDelay())
	require.NoError(t, err)
	after := AnalyzeRisk(result.Text)
	assert.Greater(t, after.Score, before.Score)
}

func TestFallback_SubstitutesAndCleans(t *testing.T) {
	out := newTestEngine(t, 1).Fallback("  We leverage   robust tools .  ")
	assert.Zero(t, vocabulary.Count(out))
	assert.False(t, strings.HasPrefix(out, " "))
	assert.NotContains(t, out, "  ")
	assert.True(t, strings.HasSuffix(out, "tools."))
}

func TestTransform_EmptyText(t *testing.T) {
	result, err := newTestEngine(t, 1).Transform(context.Background(), "", noDelay())
	require.NoError(t, err)
	assert.Empty(t, result.Text)
	assert.Zero(t, result.Burstiness.Score)
}
