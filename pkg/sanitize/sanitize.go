// Package sanitize turns user-submitted text into plain text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity-encoded markup are peeled off.
const maxPasses = 4

// Text strips every HTML tag from s, including tags that were entity-encoded,
// unescapes the remaining entities and trims surrounding whitespace. Line
// breaks inside the text are kept.
func Text(s string) string {
	// Block tags would otherwise glue neighbouring words together.
	s = strings.ReplaceAll(s, "</p>", "\n")
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "<br/>", "\n")

	out := html.UnescapeString(policy.Sanitize(s))
	// Unescaping can surface markup such as "&lt;b&gt;"; strip again until stable.
	for i := 1; i < maxPasses && strings.ContainsAny(out, "<&"); i++ {
		next := html.UnescapeString(policy.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}
