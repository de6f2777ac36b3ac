package extract

import "strings"

// stripCodeFence unwraps a Markdown code fence around a model response.
// Models frequently wrap JSON in ```json fences despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line, if any.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// countWords counts whitespace-delimited words. This is the canonical
// word count for extracted content; the model's own count is never used.
func countWords(s string) int {
	return len(strings.Fields(s))
}
