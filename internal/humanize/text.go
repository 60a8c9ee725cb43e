package humanize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	tagRe            = regexp.MustCompile(`<[^>]*>`)
	paragraphBreakRe = regexp.MustCompile(`\n[ \t]*\n\s*`)
	// markupLeadRe matches paragraphs that open with a block-level tag.
	markupLeadRe = regexp.MustCompile(`(?i)^<(?:/|!--|h[1-6]\b|ul\b|ol\b|li\b|div\b|blockquote\b|table\b|thead\b|tbody\b|tr\b|figure\b|img\b|pre\b|hr\b|section\b|nav\b)`)
	wrapperRe    = regexp.MustCompile(`(?is)^(<p\b[^>]*>)(.*?)(</p>)$`)
)

// mapOutsideTags applies fn to every run of text between markup tags, leaving
// the tags themselves untouched.
func mapOutsideTags(text string, fn func(string) string) string {
	locs := tagRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return fn(text)
	}

	var sb strings.Builder
	sb.Grow(len(text))
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			sb.WriteString(fn(text[prev:loc[0]]))
		}
		sb.WriteString(text[loc[0]:loc[1]])
		prev = loc[1]
	}
	if prev < len(text) {
		sb.WriteString(fn(text[prev:]))
	}
	return sb.String()
}

// stripTags removes markup tags, keeping a space so adjacent words don't merge.
func stripTags(text string) string {
	return tagRe.ReplaceAllString(text, " ")
}

func splitParagraphs(text string) []string {
	return paragraphBreakRe.Split(text, -1)
}

func joinParagraphs(paragraphs []string) string {
	return strings.Join(paragraphs, "\n\n")
}

func isMarkupParagraph(p string) bool {
	return markupLeadRe.MatchString(strings.TrimSpace(p))
}

// isProse reports whether p is a natural-language paragraph at least minChars long.
func isProse(p string, minChars int) bool {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" || isMarkupParagraph(trimmed) {
		return false
	}
	return utf8.RuneCountInString(trimmed) >= minChars
}

// block is a prose paragraph split into an optional <p> wrapper and its body.
type block struct {
	open  string
	body  string
	close string
}

func parseBlock(p string) block {
	trimmed := strings.TrimSpace(p)
	if m := wrapperRe.FindStringSubmatch(trimmed); m != nil {
		return block{open: m[1], body: strings.TrimSpace(m[2]), close: m[3]}
	}
	return block{body: trimmed}
}

func (b block) String() string {
	return b.open + b.body + b.close
}

// splitSentences splits on terminal punctuation followed by whitespace.
// Closing quotes and brackets stay attached to the sentence they end.
func splitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminal(runes[j]) || isCloser(runes[j])) {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}
		if s := strings.TrimSpace(string(runes[start:j])); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j
	}
	if start < len(runes) {
		if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}

func joinSentences(sentences []string) string {
	return strings.Join(sentences, " ")
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

func hasMarkup(s string) bool {
	return strings.ContainsRune(s, '<')
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// endsWithPeriod reports a single terminal period, not an ellipsis.
func endsWithPeriod(s string) bool {
	return strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "..")
}
