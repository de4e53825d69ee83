package format

import (
	"regexp"
	"unicode/utf8"
)

var mdV1Specials = regexp.MustCompile("([_*`\\[])")

// EscapeMarkdown escapes the characters that legacy Telegram Markdown treats as entity markers,
// so user or catalog supplied names can be embedded inside *bold* titles.
func EscapeMarkdown(text string) string {
	return mdV1Specials.ReplaceAllString(text, `\$1`)
}

// Truncate shortens s to at most max runes and appends marker when something was cut.
func Truncate(s string, max int, marker string) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + marker
}
