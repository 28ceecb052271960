package utils

import "github.com/microcosm-cc/bluemonday"

// Webhook payloads are untrusted; activity descriptions built from them are
// stripped of all markup before storage since the feed renders them as text.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips HTML from free-text input to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
