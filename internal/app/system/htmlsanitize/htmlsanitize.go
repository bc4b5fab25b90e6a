// Package htmlsanitize strips dangerous HTML from user-supplied rich text.
//
// AAR items, event objectives, and step notes accept formatted text from
// the browser; everything is run through a UGC policy before storage so
// script injection cannot reach other viewers.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var policy = bluemonday.UGCPolicy()

// Sanitize returns the input with unsafe tags and attributes removed.
func Sanitize(input string) string {
	if input == "" {
		return ""
	}
	return policy.Sanitize(input)
}

// StrictPolicy strips all HTML, leaving plain text. Used for fields that
// should never contain markup (names, titles, locations).
var strict = bluemonday.StrictPolicy()

// SanitizeStrict returns the input with every tag removed.
func SanitizeStrict(input string) string {
	if input == "" {
		return ""
	}
	return strict.Sanitize(input)
}
