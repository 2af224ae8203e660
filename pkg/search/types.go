package search

import (
	"errors"
	"fmt"
	"strings"
)

// NoResultsText is returned as the answer when the provider yields no text.
const NoResultsText = "No results found."

const (
	defaultSourceTitle = "Source"
	defaultSourceURI   = "#"
)

// ErrMissingAPIKey matches any *ConfigurationError via errors.Is.
var ErrMissingAPIKey = errors.New("gemini api key is not configured")

// Source is a web reference the answer was grounded on.
type Source struct {
	Title string `json:"title" jsonschema:"title of the cited page"`
	URI   string `json:"uri" jsonschema:"address of the cited page"`
}

// SearchResult is the normalized reply of a grounded search.
type SearchResult struct {
	Text    string   `json:"text" jsonschema:"markdown answer"`
	Sources []Source `json:"sources" jsonschema:"cited web sources, deduplicated by uri"`
}

// ConfigurationError reports that no credential could be resolved.
type ConfigurationError struct {
	Variables []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Variables) == 0 {
		return "GEMINI_API_KEY is not configured."
	}
	return fmt.Sprintf("%s is not configured.", strings.Join(e.Variables, " or "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrMissingAPIKey
}
