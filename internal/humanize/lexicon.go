package humanize

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexicon is a compiled term table. All terms are folded into one
// case-insensitive alternation ordered longest-first, so a multi-word term
// always wins over any shorter term it contains and replaced text is never
// rescanned.
type Lexicon struct {
	pattern      *regexp.Regexp
	alternatives map[string][]string
	terms        []string
	// clauseFinal terms are left alone when nothing but closing
	// punctuation follows them.
	clauseFinal map[string]bool
}

// NewLexicon compiles a term -> alternatives table. Every term must be
// non-empty and have at least one alternative.
func NewLexicon(table map[string][]string) (*Lexicon, error) {
	if len(table) == 0 {
		return nil, &PreconditionError{Message: "lexicon table is empty"}
	}

	alternatives := make(map[string][]string, len(table))
	terms := make([]string, 0, len(table))
	for term, alts := range table {
		key := normalizeTerm(term)
		if key == "" {
			return nil, &PreconditionError{Message: "lexicon contains an empty term"}
		}
		if len(alts) == 0 {
			return nil, &PreconditionError{Message: fmt.Sprintf("term %q has no alternatives", term)}
		}
		if _, dup := alternatives[key]; dup {
			return nil, &PreconditionError{Message: fmt.Sprintf("term %q is listed twice", term)}
		}
		alternatives[key] = alts
		terms = append(terms, key)
	}

	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	parts := make([]string, len(terms))
	for i, term := range terms {
		words := strings.Fields(term)
		for w := range words {
			words[w] = regexp.QuoteMeta(words[w])
		}
		parts[i] = strings.Join(words, `\s+`)
	}

	pattern, err := regexp.Compile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile lexicon: %w", err)
	}

	return &Lexicon{pattern: pattern, alternatives: alternatives, terms: terms}, nil
}

// mustLexicon is used for the package tables, which are known to be valid.
func mustLexicon(table map[string][]string) *Lexicon {
	lex, err := NewLexicon(table)
	if err != nil {
		panic(err)
	}
	return lex
}

// withClauseFinal returns a copy of l that skips the given terms at the end
// of a clause.
func (l *Lexicon) withClauseFinal(terms []string) *Lexicon {
	guarded := *l
	guarded.clauseFinal = make(map[string]bool, len(terms))
	for _, term := range terms {
		guarded.clauseFinal[normalizeTerm(term)] = true
	}
	return &guarded
}

// phraseLexicon builds a lexicon for counting only; each phrase maps to itself.
func phraseLexicon(phrases []string) *Lexicon {
	table := make(map[string][]string, len(phrases))
	for _, p := range phrases {
		table[p] = []string{p}
	}
	return mustLexicon(table)
}

// Terms returns the table keys in match order (longest first).
func (l *Lexicon) Terms() []string {
	out := make([]string, len(l.terms))
	copy(out, l.terms)
	return out
}

// Alternatives returns the registered renderings for term, or nil.
func (l *Lexicon) Alternatives(term string) []string {
	return l.alternatives[normalizeTerm(term)]
}

// Replace substitutes every match outside markup tags with an alternative
// chosen independently per occurrence. A leading capital on the matched text
// carries over to the replacement. It returns the new text and the number of
// replacements made.
func (l *Lexicon) Replace(text string, rng *rand.Rand) (string, int) {
	count := 0
	out := mapOutsideTags(text, func(segment string) string {
		matches := l.pattern.FindAllStringIndex(segment, -1)
		if len(matches) == 0 {
			return segment
		}
		var b strings.Builder
		last := 0
		for _, loc := range matches {
			match := segment[loc[0]:loc[1]]
			key := normalizeTerm(match)
			alts := l.alternatives[key]
			if len(alts) == 0 || (l.clauseFinal[key] && atClauseEnd(segment[loc[1]:])) {
				continue
			}
			count++
			choice := alts[0]
			if len(alts) > 1 {
				choice = alts[rng.IntN(len(alts))]
			}
			b.WriteString(segment[last:loc[0]])
			b.WriteString(matchCase(match, choice))
			last = loc[1]
		}
		b.WriteString(segment[last:])
		return b.String()
	})
	return out, count
}

// atClauseEnd reports whether rest starts with closing punctuation or is blank.
func atClauseEnd(rest string) bool {
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return strings.ContainsRune(".,;:!?", r)
}

// Count returns the number of whole-word matches in the visible text.
func (l *Lexicon) Count(text string) int {
	return len(l.pattern.FindAllStringIndex(stripTags(text), -1))
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}

// matchCase capitalizes replacement when original starts with an upper-case letter.
func matchCase(original, replacement string) string {
	first, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(first) {
		return capitalize(replacement)
	}
	return replacement
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
