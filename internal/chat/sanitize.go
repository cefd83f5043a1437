package chat

import (
	"regexp"
	"strings"
)

const maxReplyRunes = 900

var blankLines = regexp.MustCompile(`\n{3,}`)

// Sanitize strips bold markers, collapses runs of blank lines and caps the
// reply length for display.
func Sanitize(content string) string {
	out := strings.ReplaceAll(content, "**", "")
	out = blankLines.ReplaceAllString(out, "\n\n")
	if r := []rune(out); len(r) > maxReplyRunes {
		out = string(r[:maxReplyRunes]) + "…"
	}
	return strings.TrimSpace(out)
}
