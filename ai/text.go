package ai

import "strings"

// StripFences removes a wrapping Markdown code fence (```json ... ``` or
// ``` ... ```) from model output. Models frequently wrap JSON in fences even
// when told not to; strip before any structured parse.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractFenced returns the content of the first fenced code block in s,
// reporting whether one was found. A fence opened but never closed runs to
// the end of the string.
func ExtractFenced(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]

	// Drop an info string like "json" up to the first newline.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && isFenceInfo(rest[:nl]) {
		rest = rest[nl+1:]
	}

	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}

func isFenceInfo(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
