package humanize

import (
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	closingHeadingRe = regexp.MustCompile(`(?i)<h([1-6])([^>]*)>\s*(?:` + alternation(closingHeadings) + `)\s*</h([1-6])>`)
	idAttrRe         = regexp.MustCompile(`(?i)\bid\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	leadInRe         = regexp.MustCompile(`(?i)\b(?:` + alternation(conclusionLeadIns) + `)\s*,\s*`)
	whichClauseRe    = regexp.MustCompile(`, which (is|was|are|were) ([^,.;:!?<>]{1,80}),`)
	hedgeMarkerRe    = regexp.MustCompile(`(?i)\b(?:` + alternation(hedgeMarkers) + `)\b`)
	slugRe           = regexp.MustCompile(`[^a-z0-9]+`)

	horizontalSpaceRe  = regexp.MustCompile(`[ \t]+`)
	spaceBeforePunctRe = regexp.MustCompile(` +([.,;:!?])`)
	periodRunRe        = regexp.MustCompile(`\.{2,}`)
	trailingSpaceRe    = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunRe         = regexp.MustCompile(`\n{3,}`)
)

// alternation quotes phrases into a regexp alternation, longest first.
func alternation(phrases []string) string {
	sorted := make([]string, len(phrases))
	copy(sorted, phrases)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	for i, p := range sorted {
		sorted[i] = strings.ReplaceAll(regexp.QuoteMeta(p), " ", `\s+`)
	}
	return strings.Join(sorted, "|")
}

func compileListPattern(nouns []string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b(three)(\s+(?:(?:` + alternation(listAdjectives) + `)\s+)?(?:` + alternation(nouns) + `))\b`)
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.IntN(len(pool))]
}

// Substitute replaces marked vocabulary with plain alternatives.
func (e *Engine) Substitute(text string) (string, int) {
	return e.vocabulary.Replace(text, e.rng)
}

// FoldContractions replaces expanded auxiliary phrases with contractions.
func (e *Engine) FoldContractions(text string) (string, int) {
	return contractions.Replace(text, e.rng)
}

// BiasListCardinality relabels "three <list noun>" to "four" or "two".
// It fires on every match; only the choice between the two is random.
func (e *Engine) BiasListCardinality(text string) (string, int) {
	count := 0
	out := mapOutsideTags(text, func(segment string) string {
		return e.listPattern.ReplaceAllStringFunc(segment, func(match string) string {
			sub := e.listPattern.FindStringSubmatch(match)
			word := "four"
			if e.rng.IntN(2) == 1 {
				word = "two"
			}
			count++
			return matchCase(sub[1], word) + sub[2]
		})
	})
	return out, count
}

// RelabelHeadings swaps formal closing headings for informal ones, rewrites
// their id anchors (and in-page links to them), and strips "in conclusion"
// style lead-ins from body text.
func (e *Engine) RelabelHeadings(text string) (string, int) {
	type anchor struct{ from, to string }

	offset := e.rng.IntN(len(headingAlternatives))
	relabeled := 0
	var anchors []anchor

	text = closingHeadingRe.ReplaceAllStringFunc(text, func(match string) string {
		sub := closingHeadingRe.FindStringSubmatch(match)
		if sub[1] != sub[3] {
			return match
		}
		label := headingAlternatives[(offset+relabeled)%len(headingAlternatives)]
		relabeled++

		attrs := sub[2]
		if id := idAttrRe.FindStringSubmatch(attrs); id != nil {
			oldID := id[1] + id[2]
			newID := slugify(label)
			anchors = append(anchors, anchor{from: oldID, to: newID})
			attrs = idAttrRe.ReplaceAllLiteralString(attrs, `id="`+newID+`"`)
		}
		return "<h" + sub[1] + attrs + ">" + label + "</h" + sub[3] + ">"
	})

	for _, a := range anchors {
		if a.from == "" {
			continue
		}
		text = strings.ReplaceAll(text, `href="#`+a.from+`"`, `href="#`+a.to+`"`)
	}

	text, stripped := stripLeadIns(text)
	return text, relabeled + stripped
}

func stripLeadIns(text string) (string, int) {
	count := 0
	out := mapOutsideTags(text, func(segment string) string {
		locs := leadInRe.FindAllStringIndex(segment, -1)
		if len(locs) == 0 {
			return segment
		}
		var sb strings.Builder
		prev := 0
		upperNext := false
		for _, loc := range locs {
			chunk := segment[prev:loc[0]]
			if upperNext {
				chunk = capitalize(chunk)
			}
			sb.WriteString(chunk)
			first, _ := utf8.DecodeRuneInString(segment[loc[0]:])
			upperNext = unicode.IsUpper(first)
			prev = loc[1]
			count++
		}
		tail := segment[prev:]
		if upperNext {
			tail = capitalize(tail)
		}
		sb.WriteString(tail)
		return sb.String()
	})
	return out, count
}

func slugify(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// BreakSymmetry adds an interjection to one interior sentence of every third
// prose paragraph.
func (e *Engine) BreakSymmetry(text string) (string, int) {
	paragraphs := splitParagraphs(text)
	seen, count := 0, 0
	for i, p := range paragraphs {
		if !isProse(p, proseMinChars) {
			continue
		}
		index := seen
		seen++
		if index%3 != 2 {
			continue
		}

		b := parseBlock(p)
		sentences := splitSentences(b.body)
		if len(sentences) < 3 {
			continue
		}
		k := 1 + e.rng.IntN(len(sentences)-2)
		s := sentences[k]
		if hasMarkup(s) || !endsWithPeriod(s) {
			continue
		}
		sentences[k] = strings.TrimSuffix(s, ".") + ", " + pick(e.rng, interjections) + "."
		b.body = joinSentences(sentences)
		paragraphs[i] = b.String()
		count++
	}
	return joinParagraphs(paragraphs), count
}

// InjectVoice prepends an informal starter to a fraction of prose paragraphs,
// never the first.
func (e *Engine) InjectVoice(text string, frequency float64) (string, int) {
	return e.eachLaterParagraph(text, frequency, func(b block) (block, bool) {
		b.body = pick(e.rng, voiceStarters) + " " + b.body
		return b, true
	})
}

// InjectQuestions appends a rhetorical question to a fraction of prose
// paragraphs, never the first.
func (e *Engine) InjectQuestions(text string, frequency float64) (string, int) {
	return e.eachLaterParagraph(text, frequency, func(b block) (block, bool) {
		if strings.HasSuffix(b.body, "?") {
			return b, false
		}
		b.body = b.body + " " + pick(e.rng, rhetoricalQuestions)
		return b, true
	})
}

func (e *Engine) eachLaterParagraph(text string, frequency float64, fn func(block) (block, bool)) (string, int) {
	paragraphs := splitParagraphs(text)
	first := true
	count := 0
	for i, p := range paragraphs {
		if !isProse(p, proseMinChars) {
			continue
		}
		if first {
			first = false
			continue
		}
		if e.rng.Float64() >= frequency {
			continue
		}
		if b, ok := fn(parseBlock(p)); ok {
			paragraphs[i] = b.String()
			count++
		}
	}
	return joinParagraphs(paragraphs), count
}

// InjectHedges inserts a hedge word within the first few words of a fraction
// of long declarative sentences.
func (e *Engine) InjectHedges(text string, frequency float64) (string, int) {
	count := 0
	out := e.eachSentence(text, proseMinChars, func(s string) (string, bool) {
		if wordCount(s) < hedgeMinWords || strings.HasSuffix(s, "?") || hasMarkup(s) || hedgeMarkerRe.MatchString(s) {
			return s, false
		}
		if e.rng.Float64() >= frequency {
			return s, false
		}
		words := strings.Fields(s)
		pos := 1 + e.rng.IntN(min(hedgeMaxPosition, len(words)-1))
		withHedge := make([]string, 0, len(words)+1)
		withHedge = append(withHedge, words[:pos]...)
		withHedge = append(withHedge, pick(e.rng, hedges))
		withHedge = append(withHedge, words[pos:]...)
		count++
		return strings.Join(withHedge, " "), true
	})
	return out, count
}

// AddPunctuationFriction turns some ", which is X," clauses into em-dash
// parentheticals and, rarely, a long sentence's period into an ellipsis.
func (e *Engine) AddPunctuationFriction(text string) (string, int) {
	count := 0
	paragraphs := splitParagraphs(text)
	for i, p := range paragraphs {
		if !isProse(p, proseMinChars) {
			continue
		}
		b := parseBlock(p)
		body := whichClauseRe.ReplaceAllStringFunc(b.body, func(match string) string {
			if e.rng.Float64() >= emDashProbability {
				return match
			}
			sub := whichClauseRe.FindStringSubmatch(match)
			count++
			return " — which " + sub[1] + " " + strings.TrimSpace(sub[2]) + " —"
		})
		if body != b.body {
			b.body = body
			paragraphs[i] = b.String()
		}
	}
	text = joinParagraphs(paragraphs)

	text = e.eachSentence(text, proseMinChars, func(s string) (string, bool) {
		if utf8.RuneCountInString(s) <= ellipsisMinChars || !endsWithPeriod(s) ||
			strings.ContainsAny(s, "?…") || strings.Contains(s, "...") {
			return s, false
		}
		if e.rng.Float64() >= ellipsisProbability {
			return s, false
		}
		count++
		return s + "..", true
	})
	return text, count
}

// RebalanceBurstiness splits a sentence whose length is close to its
// predecessor's into a short fragment and a remainder.
func (e *Engine) RebalanceBurstiness(text string) (string, int) {
	paragraphs := splitParagraphs(text)
	count := 0
	for i, p := range paragraphs {
		if !isProse(p, burstinessMinChars) {
			continue
		}
		b := parseBlock(p)
		sentences := splitSentences(b.body)
		out := make([]string, 0, len(sentences)+2)
		changed := false
		for j, s := range sentences {
			if j > 0 && !hasMarkup(s) {
				prev, cur := wordCount(sentences[j-1]), wordCount(s)
				if prev > splitMinWords && cur > splitMinWords && abs(prev-cur) <= splitMaxDelta {
					if fragment, rest, ok := splitSentence(s); ok {
						out = append(out, fragment, rest)
						changed = true
						count++
						continue
					}
				}
			}
			out = append(out, s)
		}
		if changed {
			b.body = joinSentences(out)
			paragraphs[i] = b.String()
		}
	}
	return joinParagraphs(paragraphs), count
}

func splitSentence(s string) (string, string, bool) {
	words := strings.Fields(s)
	k := min(splitMaxFragment, len(words)/3)
	if k < 1 {
		return "", "", false
	}
	last := strings.TrimRight(words[k-1], ",;:—-")
	if last == "" {
		return "", "", false
	}
	head := append(words[:k-1:k-1], last)
	fragment := strings.Join(head, " ") + "."
	rest := capitalize(strings.Join(words[k:], " "))
	if utf8.RuneCountInString(fragment) <= splitMinFragmentLen || utf8.RuneCountInString(rest) <= splitMinRemainder {
		return "", "", false
	}
	return fragment, rest, true
}

// eachSentence rewrites sentences of prose paragraphs, rebuilding only the
// paragraphs fn changed.
func (e *Engine) eachSentence(text string, minChars int, fn func(string) (string, bool)) string {
	paragraphs := splitParagraphs(text)
	for i, p := range paragraphs {
		if !isProse(p, minChars) {
			continue
		}
		b := parseBlock(p)
		sentences := splitSentences(b.body)
		changed := false
		for j, s := range sentences {
			if next, ok := fn(s); ok {
				sentences[j] = next
				changed = true
			}
		}
		if changed {
			b.body = joinSentences(sentences)
			paragraphs[i] = b.String()
		}
	}
	return joinParagraphs(paragraphs)
}

// Cleanup normalizes whitespace and punctuation left behind by the passes.
func (e *Engine) Cleanup(text string) string {
	return cleanup(text)
}

func cleanup(text string) string {
	text = horizontalSpaceRe.ReplaceAllString(text, " ")
	text = mapOutsideTags(text, func(segment string) string {
		segment = spaceBeforePunctRe.ReplaceAllString(segment, "$1")
		return periodRunRe.ReplaceAllStringFunc(segment, func(run string) string {
			if len(run) == 2 {
				return "."
			}
			return "..."
		})
	})
	text = trailingSpaceRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
