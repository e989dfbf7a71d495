// Package sanitize provides text sanitization utilities to prevent XSS attacks.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	entityDecoder = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityDecoder.Replace(result)
	// encoded tags survive the first pass
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text strips HTML from free text such as notes and symptom summaries.
// Line breaks are kept.
func Text(s string) string {
	return StripHTML(s)
}

// TextPtr is a helper for optional string pointers
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}

// Name strips HTML and collapses every run of whitespace to a single space.
func Name(s string) string {
	return CollapseSpaces(StripHTML(s))
}

// CollapseSpaces trims s and replaces internal whitespace runs with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
