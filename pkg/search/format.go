package search

import (
	"fmt"
	"strings"
)

// Markdown renders the answer followed by a numbered list of its sources.
func (r *SearchResult) Markdown() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(r.Text))
	if len(r.Sources) == 0 {
		return sb.String()
	}

	sb.WriteString("\n\n---\nSources:\n")
	for i, src := range r.Sources {
		sb.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, src.Title, src.URI))
	}
	return strings.TrimRight(sb.String(), "\n")
}
