package utils

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f]`)

// SanitizeString removes control characters other than newline and tab and
// trims surrounding space.
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}
