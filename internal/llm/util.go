package llm

import "strings"

// CleanJSONBlock removes markdown code fences around a JSON response.
func CleanJSONBlock(text string) string {
	return stripFence(strings.TrimSpace(text))
}

// CleanHTMLBlock prepares a generated article for humanization: code fences
// are removed, any chatty preamble before the first tag is dropped, and a full
// document is reduced to its body.
func CleanHTMLBlock(text string) string {
	text = stripFence(strings.TrimSpace(text))

	lower := strings.ToLower(text)
	if start := strings.Index(lower, "<body"); start >= 0 {
		if open := strings.Index(text[start:], ">"); open >= 0 {
			body := text[start+open+1:]
			if end := strings.LastIndex(strings.ToLower(body), "</body>"); end >= 0 {
				body = body[:end]
			}
			text = body
		}
	}

	if idx := strings.Index(text, "<"); idx > 0 {
		text = text[idx:]
	}
	return strings.TrimSpace(text)
}

// stripFence removes a ``` fence and its language tag, if present.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		// A language identifier is a short single token.
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[<") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
