package model

import (
	"html"
	"regexp"
	"strings"
)

// tagPattern matches markup tags, including an unterminated trailing tag.
// A bare "<" that does not open a tag ("a < b", "<3") is left for escaping.
var tagPattern = regexp.MustCompile(`<[a-zA-Z/!?][^>]*(>|$)`)

// Sanitize strips markup tags from s and HTML-escapes the remainder so
// stored text is never interpreted as markup when rendered.
//
// Entities already present are decoded before escaping, so text is never
// double-escaped and Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(html.EscapeString(html.UnescapeString(s)))
}

// sanitizeEmail drops every character that cannot appear in an address.
func sanitizeEmail(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("!#$%&'*+-=?^_`{|}~@.[]", r):
			return r
		}
		return -1
	}, s)
}
