// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous markup from user-supplied text.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps basic formatting markup and removes scripts, event
// handlers and other dangerous constructs.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// StripTags removes all markup, returning plain text. Use for fields that
// are never rendered as HTML (names, usernames, references).
func StripTags(s string) string {
	return strict.Sanitize(s)
}
