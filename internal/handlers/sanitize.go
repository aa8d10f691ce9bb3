package handlers

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength caps message text length in characters.
const MaxMessageLength = 8000

var (
	scriptTagRegex = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	onEventRegex   = regexp.MustCompile(`(?i)\s+on\w+\s*=`)
)

// SanitizeMessageContent cleans and validates message text before it is
// persisted. Returns the sanitized content or an error if nothing
// usable remains.
func SanitizeMessageContent(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errors.New("message cannot be empty")
	}

	if utf8.RuneCountInString(content) > MaxMessageLength {
		return "", errors.New("message exceeds maximum length")
	}

	// Remove script tags and inline event handlers (onclick, onload, ...).
	content = scriptTagRegex.ReplaceAllString(content, "")
	content = onEventRegex.ReplaceAllString(content, " ")

	// Escape HTML entities to prevent XSS.
	content = html.EscapeString(content)

	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("message cannot be empty after sanitization")
	}

	return content, nil
}
