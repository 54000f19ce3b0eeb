package planner

import (
	"html"
	"strings"
)

// stripHTML turns the provider's html_instructions into plain text: tags are
// replaced by spaces (the provider uses <div> blocks as separators inside one
// instruction), entities are unescaped and whitespace runs collapse to one
// space.
func stripHTML(instruction string) string {
	var b strings.Builder
	b.Grow(len(instruction))

	inTag := false
	for _, r := range instruction {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}
