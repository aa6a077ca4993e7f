package inputval

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// CleanText strips all markup from free text (reasons, names) and trims it.
// Entities the sanitizer escapes are turned back into plain characters.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// CleanTextPtr is CleanText for optional fields; blank results become nil.
func CleanTextPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := CleanText(*p)
	if v == "" {
		return nil
	}
	return &v
}

// SplitLines turns a newline-delimited bulk entry into cleaned, non-blank lines.
func SplitLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if v := CleanText(line); v != "" {
			out = append(out, v)
		}
	}
	return out
}
