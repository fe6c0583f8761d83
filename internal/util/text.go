package util

import "strings"

// SanitizeText drops invalid UTF-8 and NUL bytes, which providers reject.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// SanitizeTexts applies SanitizeText to every item in place and returns texts.
func SanitizeTexts(texts []string) []string {
	for i := range texts {
		texts[i] = SanitizeText(texts[i])
	}
	return texts
}
