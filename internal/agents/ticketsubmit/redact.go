package ticketsubmit

import (
	"regexp"
	"strings"
)

const maskGlyph = '*'

// Redaction pattern classes, applied in order. Each matched span is masked
// whole, label and separator included, so a second pass finds nothing to
// match and redaction stays idempotent.
var redactionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(password|pass|secret|api[ _-]?key|apikey|token)\b\s*[:=]\s*[^\s,;]+`),
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._-]+`),
	regexp.MustCompile(`ssh-rsa\s+[A-Za-z0-9+/=]+`),
}

// Redact masks secret-like substrings in free text. Every non-whitespace
// character of a matched span becomes the mask glyph, preserving length and
// whitespace layout. Empty input passes through unchanged.
func Redact(text string) string {
	if text == "" {
		return text
	}
	for _, pattern := range redactionPatterns {
		text = pattern.ReplaceAllStringFunc(text, maskSpan)
	}
	return text
}

func maskSpan(span string) string {
	var sb strings.Builder
	sb.Grow(len(span))
	for _, r := range span {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(maskGlyph)
		}
	}
	return sb.String()
}
