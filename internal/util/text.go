package util

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	whitespace = regexp.MustCompile(`[ \t\r\f\v]+`)
	lineBreak  = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraph  = regexp.MustCompile(`(?i)</p>\s*<p[^>]*>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
	strict     = bluemonday.StrictPolicy()
)

// NormalizeWhitespace trims and collapses runs of spaces and tabs. Newlines are kept.
func NormalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(whitespace.ReplaceAllString(l, " "))
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// HTMLToText renders status or profile HTML as plain text for the terminal.
// Paragraphs become blank lines and <br> becomes a newline.
func HTMLToText(s string) string {
	s = paragraph.ReplaceAllString(s, "\n\n")
	s = lineBreak.ReplaceAllString(s, "\n")
	return NormalizeWhitespace(html.UnescapeString(strict.Sanitize(s)))
}

// Truncate shortens s to at most n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// OneLine joins the lines of s with single spaces.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
