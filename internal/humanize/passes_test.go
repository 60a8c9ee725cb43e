package humanize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, seed uint64, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := New(testRand(seed), opts...)
	require.NoError(t, err)
	return e
}

const (
	plainParagraph = "<p>The first sentence here is fairly plain. The second sentence adds a little more detail. The third sentence wraps the paragraph up nicely.</p>"
)

func TestBiasListCardinality_NeverLeavesThree(t *testing.T) {
	in := "Three factors matter: speed, cost, and quality."
	seen := map[string]int{}
	for seed := uint64(0); seed < 100; seed++ {
		out, n := newTestEngine(t, seed).BiasListCardinality(in)
		require.Equal(t, 1, n)
		require.NotContains(t, out, "Three factors")
		switch {
		case strings.HasPrefix(out, "Four factors"):
			seen["four"]++
		case strings.HasPrefix(out, "Two factors"):
			seen["two"]++
		default:
			t.Fatalf("unexpected output %q", out)
		}
	}
	assert.Positive(t, seen["four"])
	assert.Positive(t, seen["two"])
}

func TestBiasListCardinality_AdjectiveAndNonListNoun(t *testing.T) {
	e := newTestEngine(t, 3)

	out, n := e.BiasListCardinality("Follow these three key steps today.")
	assert.Equal(t, 1, n)
	assert.Regexp(t, `these (four|two) key steps`, out)

	out, n = e.BiasListCardinality("We adopted three cats last year.")
	assert.Zero(t, n)
	assert.Equal(t, "We adopted three cats last year.", out)
}

func TestWithListNouns(t *testing.T) {
	e := newTestEngine(t, 3, WithListNouns([]string{"cats"}))
	out, n := e.BiasListCardinality("We adopted three cats last year.")
	assert.Equal(t, 1, n)
	assert.NotContains(t, out, "three cats")

	_, err := New(testRand(1), WithListNouns(nil))
	assert.Error(t, err)
}

func TestRelabelHeadings_ClosingHeadingAndLeadIn(t *testing.T) {
	in := "<h2>Conclusion</h2>\n\n<p>In conclusion, this matters.</p>"
	out, n := newTestEngine(t, 11).RelabelHeadings(in)

	assert.Equal(t, 2, n)
	assert.NotContains(t, out, "<h2>Conclusion</h2>")
	assert.NotContains(t, out, "In conclusion,")
	assert.Contains(t, out, "<p>This matters.</p>")

	found := false
	for _, label := range headingAlternatives {
		if strings.Contains(out, "<h2>"+label+"</h2>") {
			found = true
		}
	}
	assert.True(t, found, "heading should use an informal label: %q", out)
}

func TestRelabelHeadings_RewritesAnchors(t *testing.T) {
	in := `<p><a href="#conclusion">Skip ahead</a></p>` + "\n\n" + `<h3 id="conclusion" class="end">Final Thoughts</h3>`
	out, _ := newTestEngine(t, 5).RelabelHeadings(in)

	var label string
	for _, l := range headingAlternatives {
		if strings.Contains(out, ">"+l+"</h3>") {
			label = l
		}
	}
	require.NotEmpty(t, label, out)
	slug := slugify(label)
	assert.Contains(t, out, `<h3 id="`+slug+`" class="end">`)
	assert.Contains(t, out, `href="#`+slug+`"`)
	assert.NotContains(t, out, `"#conclusion"`)
}

func TestRelabelHeadings_RotatesLabels(t *testing.T) {
	in := "<h2>Summary</h2>\n\n<h2>Conclusion</h2>"
	out, n := newTestEngine(t, 2).RelabelHeadings(in)
	assert.Equal(t, 2, n)

	labels := 0
	for _, l := range headingAlternatives {
		if strings.Contains(out, "<h2>"+l+"</h2>") {
			labels++
		}
	}
	assert.Equal(t, 2, labels, "consecutive headings should get different labels")
}

func TestRelabelHeadings_MismatchedTagsUntouched(t *testing.T) {
	in := "<h2>Summary</h3>"
	out, n := newTestEngine(t, 1).RelabelHeadings(in)
	assert.Equal(t, in, out)
	assert.Zero(t, n)
}

func TestBreakSymmetry_EveryThirdParagraph(t *testing.T) {
	in := strings.Join([]string{plainParagraph, plainParagraph, plainParagraph}, "\n\n")
	out, n := newTestEngine(t, 9).BreakSymmetry(in)
	require.Equal(t, 1, n)

	paragraphs := splitParagraphs(out)
	require.Len(t, paragraphs, 3)
	assert.Equal(t, plainParagraph, paragraphs[0])
	assert.Equal(t, plainParagraph, paragraphs[1])

	sentences := splitSentences(parseBlock(paragraphs[2]).body)
	require.Len(t, sentences, 3)
	assert.Equal(t, "The first sentence here is fairly plain.", sentences[0])
	assert.Equal(t, "The third sentence wraps the paragraph up nicely.", sentences[2])
	assert.True(t, strings.HasPrefix(sentences[1], "The second sentence adds a little more detail, "))
}

func TestInjectVoice_SkipsFirstParagraph(t *testing.T) {
	in := strings.Join([]string{plainParagraph, plainParagraph, plainParagraph}, "\n\n")
	e := newTestEngine(t, 4)

	out, n := e.InjectVoice(in, 1)
	assert.Equal(t, 2, n)
	paragraphs := splitParagraphs(out)
	assert.Equal(t, plainParagraph, paragraphs[0])
	for _, p := range paragraphs[1:] {
		body := parseBlock(p).body
		matched := false
		for _, starter := range voiceStarters {
			if strings.HasPrefix(body, starter+" The first sentence") {
				matched = true
			}
		}
		assert.True(t, matched, "missing starter: %q", p)
	}

	out, n = e.InjectVoice(in, 0)
	assert.Zero(t, n)
	assert.Equal(t, in, out)
}

func TestInjectQuestions_AppendsBeforeClosingTag(t *testing.T) {
	in := strings.Join([]string{plainParagraph, plainParagraph}, "\n\n")
	out, n := newTestEngine(t, 4).InjectQuestions(in, 1)
	assert.Equal(t, 1, n)

	paragraphs := splitParagraphs(out)
	assert.Equal(t, plainParagraph, paragraphs[0])
	assert.True(t, strings.HasSuffix(paragraphs[1], "?</p>"), paragraphs[1])
}

func TestInjectHedges(t *testing.T) {
	long := "Our team ships small changes to production every single day of the week."
	hedged := "Our team probably ships small changes to production every single day of the week."
	question := "Why would anyone ship small changes to production every single day of the week?"
	in := "<p>" + long + " " + hedged + " " + question + "</p>"

	out, n := newTestEngine(t, 8).InjectHedges(in, 1)
	assert.Equal(t, 1, n)

	sentences := splitSentences(parseBlock(out).body)
	require.Len(t, sentences, 3)
	assert.Equal(t, wordCount(long)+1, wordCount(sentences[0]))
	assert.Regexp(t, hedgeMarkerRe, sentences[0])
	assert.True(t, strings.HasPrefix(sentences[0], "Our "))
	assert.Equal(t, hedged, sentences[1])
	assert.Equal(t, question, sentences[2])
}

func TestAddPunctuationFriction_EmDash(t *testing.T) {
	in := "<p>The new scheduling tool, which is cheap to run, works well for small teams. Everyone on the team agreed after a week.</p>"
	converted := 0
	for seed := uint64(0); seed < 200; seed++ {
		out, _ := newTestEngine(t, seed).AddPunctuationFriction(in)
		if strings.Contains(out, "tool — which is cheap to run — works") {
			converted++
		} else {
			require.Contains(t, out, "tool, which is cheap to run, works")
		}
	}
	assert.Positive(t, converted)
	assert.Less(t, converted, 200)
}

func TestAddPunctuationFriction_Ellipsis(t *testing.T) {
	eligible := "Our marketing team reviewed every single campaign we launched during the busy spring season."
	short := "It rained today."
	question := "The page at example.com/?ref=abc loads slowly for every single visitor we have seen this month."
	trailing := "We waited...and waited for the long report to finally arrive in our shared inbox this week."
	in := "<p>" + eligible + " " + short + " " + question + " " + trailing + "</p>"

	const trials = 2000
	converted := 0
	for seed := uint64(0); seed < trials; seed++ {
		out, n := newTestEngine(t, seed).AddPunctuationFriction(in)
		require.Contains(t, out, short)
		require.Contains(t, out, question)
		require.Contains(t, out, trailing)
		require.NotContains(t, out, "today...")
		require.NotContains(t, out, "month...")
		require.NotContains(t, out, "week...")
		if n == 0 {
			require.NotContains(t, out, "season...")
			continue
		}
		converted++
		require.Equal(t, 1, n)
		require.Contains(t, out, "season...")
		assert.Contains(t, cleanup(out), "season... It rained today.")
	}
	assert.Positive(t, converted)
	assert.Less(t, converted, trials)
}

func TestFoldContractions(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		count int
	}{
		{name: "let us stays", in: "Let us know in the comments below.", want: "Let us know in the comments below."},
		{name: "clause final it is", in: "I am not sure what it is.", want: "I'm not sure what it is.", count: 1},
		{name: "can not only", in: "You can not only save time but also money.", want: "You can not only save time but also money."},
		{name: "clause final you are", in: "Stay exactly as you are.", want: "Stay exactly as you are."},
		{name: "before comma", in: "Whatever it is, keep it short.", want: "Whatever it is, keep it short."},
		{name: "end of text", in: "Here we are", want: "Here we are"},
		{name: "mid clause", in: "It is easy, and you are ready to go.", want: "It's easy, and you're ready to go.", count: 2},
		{name: "negations", in: "We do not wait, and it will not matter.", want: "We don't wait, and it won't matter.", count: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, n := newTestEngine(t, 1).FoldContractions(tt.in)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestRebalanceBurstiness_SplitsSimilarSentences(t *testing.T) {
	first := "Our marketing team reviewed every single campaign we launched during the busy spring season this year."
	second := "The results showed that shorter emails consistently earned more clicks than the longer newsletters we sent out."
	in := "<p>" + first + " " + second + "</p>"

	out, n := newTestEngine(t, 1).RebalanceBurstiness(in)
	assert.Equal(t, 1, n)
	assert.Equal(t, "<p>"+first+" The results showed that shorter. Emails consistently earned more clicks than the longer newsletters we sent out.</p>", out)
}

func TestRebalanceBurstiness_LeavesShortParagraphs(t *testing.T) {
	out, n := newTestEngine(t, 1).RebalanceBurstiness(plainParagraph)
	assert.Zero(t, n)
	assert.Equal(t, plainParagraph, out)
}

func TestCleanup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces", in: "Hello   world .", want: "Hello world."},
		{name: "doubled period", in: "Wait.. what... ok", want: "Wait. what... ok"},
		{name: "blank lines", in: "a\n\n\n\nb", want: "a\n\nb"},
		{name: "trim", in: "  padded \n", want: "padded"},
		{name: "markup untouched", in: `<a href="../x">link</a>`, want: `<a href="../x">link</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanup(tt.in))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences(`First one. "Quoted end." Visit example.com today! Really?`)
	assert.Equal(t, []string{"First one.", `"Quoted end."`, "Visit example.com today!", "Really?"}, got)
	assert.Empty(t, splitSentences("   "))
}

func TestIsMarkupParagraph(t *testing.T) {
	assert.True(t, isMarkupParagraph("<h2>Title</h2>"))
	assert.True(t, isMarkupParagraph("  <ul>\n<li>a</li>\n</ul>"))
	assert.True(t, isMarkupParagraph("<blockquote>quote</blockquote>"))
	assert.False(t, isMarkupParagraph("<p>Body text.</p>"))
	assert.False(t, isMarkupParagraph("Plain text."))
}
