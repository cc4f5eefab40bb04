// Package util provides common utility functions used across the flight core.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// Normalize lowercases an utterance, strips surrounding punctuation from each
// word, and collapses runs of whitespace. Speech recognizers are inconsistent
// about both, so every text comparison in the pipeline goes through here.
func Normalize(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, `.,!?;:"'`)
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

// NormalizeKey is Normalize plus space-to-dash folding, for use as a cache
// or dedup key ("The Old Lighthouse" and "the old lighthouse." collide).
func NormalizeKey(s string) string {
	return strings.ReplaceAll(Normalize(s), " ", "-")
}
