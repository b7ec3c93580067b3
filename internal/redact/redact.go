// Package redact scrubs personally identifiable information from free text
// before it crosses the trust boundary into any external service.
package redact

import "regexp"

// Placeholders substituted for matched PII. They contain no digits or '@',
// so later rules can never re-match an earlier rule's output.
const (
	EmailPlaceholder = "<EMAIL>"
	PhonePlaceholder = "<PHONE>"
	IPPlaceholder    = "<IP>"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`)
	ipPattern    = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
)

// Redact masks email-like, phone-shaped, and IPv4-shaped tokens, in that
// fixed order. Total over any input (empty in, empty out) and idempotent:
// redacting already-redacted text is a no-op. Octet ranges in IPv4-shaped
// tokens are not bounds-checked; matching is purely pattern-based.
func Redact(text string) string {
	if text == "" {
		return ""
	}
	text = emailPattern.ReplaceAllString(text, EmailPlaceholder)
	text = phonePattern.ReplaceAllString(text, PhonePlaceholder)
	text = ipPattern.ReplaceAllString(text, IPPlaceholder)
	return text
}
