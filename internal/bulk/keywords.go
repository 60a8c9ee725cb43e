package bulk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadKeywords reads one keyword per row from the first CSV column. A header
// row named "keyword" or "keywords" is skipped, as are blank rows and rows
// starting with #. Duplicates are dropped case-insensitively.
func ReadKeywords(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var raw []string
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read keywords: %w", err)
		}
		if len(record) == 0 {
			continue
		}

		if row == 0 {
			if h := strings.ToLower(strings.TrimSpace(record[0])); h == "keyword" || h == "keywords" {
				continue
			}
		}
		raw = append(raw, record[0])
	}

	keywords := NormalizeKeywords(raw)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords found")
	}
	return keywords, nil
}

// NormalizeKeywords collapses internal whitespace, drops blanks and removes
// case-insensitive duplicates, keeping first occurrences in order.
func NormalizeKeywords(in []string) []string {
	keywords := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, k := range in {
		keyword := strings.Join(strings.Fields(k), " ")
		if keyword == "" {
			continue
		}
		key := strings.ToLower(keyword)
		if seen[key] {
			continue
		}
		seen[key] = true
		keywords = append(keywords, keyword)
	}
	return keywords
}
