// Package markup inspects the block structure of generated HTML articles.
// Publishing splits posts on these boundaries, so rewrites must keep them intact.
package markup

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Heading is a single h1-h6 element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Structure counts the block-level elements of an article.
type Structure struct {
	Headings    []Heading `json:"headings"`
	ListItems   int       `json:"list_items"`
	Blockquotes int       `json:"blockquotes"`
	Paragraphs  int       `json:"paragraphs"`
}

// Inspect parses html and records its block structure.
func Inspect(html string) (*Structure, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	s := &Structure{Headings: []Heading{}}
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		name := goquery.NodeName(sel)
		s.Headings = append(s.Headings, Heading{
			Level: int(name[1] - '0'),
			Text:  collapse(sel.Text()),
		})
	})
	s.ListItems = doc.Find("li").Length()
	s.Blockquotes = doc.Find("blockquote").Length()
	s.Paragraphs = doc.Find("p").Length()
	return s, nil
}

// SameShape reports whether other has the same heading levels and the same
// number of list items, blockquotes and paragraphs. Text may differ.
func (s *Structure) SameShape(other *Structure) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Headings) != len(other.Headings) ||
		s.ListItems != other.ListItems ||
		s.Blockquotes != other.Blockquotes ||
		s.Paragraphs != other.Paragraphs {
		return false
	}
	for i := range s.Headings {
		if s.Headings[i].Level != other.Headings[i].Level {
			return false
		}
	}
	return true
}

// Title returns the text of the first h1, or "" if there is none.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return collapse(doc.Find("h1").First().Text())
}

// Excerpt returns the first paragraph's text, cut at a word boundary to at
// most maxChars runes with a trailing ellipsis.
func Excerpt(html string, maxChars int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	text := collapse(doc.Find("p").First().Text())
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxChars])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "..."
}

// StripTitle removes the first h1 from html. WordPress renders the post title
// separately, so the body should not repeat it.
func StripTitle(html string) string {
	loc := h1Re.FindStringIndex(html)
	if loc == nil {
		return html
	}
	return strings.TrimSpace(html[:loc[0]] + html[loc[1]:])
}

var h1Re = regexp.MustCompile(`(?is)<h1\b[^>]*>.*?</h1>`)

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
