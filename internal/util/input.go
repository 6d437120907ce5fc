package util

import (
	"html"
	"strings"
)

// NormalizeEmail lowercases and trims an email so the same address always
// hits the same store partition.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizeInput escapes HTML/script-like characters in free-text fields
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return html.EscapeString(s)
}
