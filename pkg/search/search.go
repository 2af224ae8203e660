package search

import (
	"context"
	"log/slog"

	"google.golang.org/genai"

	"github.com/mikeboe/devweb/pkg/clients"
	"github.com/mikeboe/devweb/pkg/config"
)

// SystemInstruction sets the answer style of every search.
const SystemInstruction = "You are DevWeb, a professional search assistant. Provide concise, accurate, and well-structured answers based on Google Search results. Use markdown for formatting. Always cite your sources."

// ContentGenerator is the single Gemini capability a search needs.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory builds a generator bound to an API key.
type ClientFactory func(ctx context.Context, apiKey string) (ContentGenerator, error)

// GeminiSearcher runs Google Search grounded generations.
type GeminiSearcher struct {
	// Credential returns the API key; an empty key fails the search.
	Credential func() string
	NewClient  ClientFactory
	Model      string
	Logger     *slog.Logger
}

// NewGeminiSearcher returns a searcher reading the key from the environment
// and creating a real Gemini client per call.
func NewGeminiSearcher() *GeminiSearcher {
	return &GeminiSearcher{
		Credential: config.APIKey,
		NewClient:  newGeminiClient,
		Model:      string(clients.DefaultModel),
		Logger:     slog.Default(),
	}
}

func newGeminiClient(ctx context.Context, apiKey string) (ContentGenerator, error) {
	models, err := clients.NewGeminiModels(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return models, nil
}

// WithLogger returns a copy of s that logs to logger.
func (s *GeminiSearcher) WithLogger(logger *slog.Logger) *GeminiSearcher {
	clone := *s
	clone.Logger = logger
	return &clone
}

// PerformSearch runs query with a default GeminiSearcher.
func PerformSearch(ctx context.Context, query string) (*SearchResult, error) {
	return NewGeminiSearcher().PerformSearch(ctx, query)
}

// PerformSearch asks Gemini to answer query using Google Search and returns
// the answer with its deduplicated sources. A missing key yields a
// *ConfigurationError before any client is created; provider errors are
// logged and returned as is.
func (s *GeminiSearcher) PerformSearch(ctx context.Context, query string) (*SearchResult, error) {
	apiKey := s.Credential()
	if apiKey == "" {
		return nil, &ConfigurationError{Variables: config.APIKeyEnvVars}
	}

	client, err := s.NewClient(ctx, apiKey)
	if err != nil {
		s.logger().Error("Search error", "query", query, "error", err)
		return nil, err
	}

	resp, err := client.GenerateContent(ctx, s.model(), genai.Text(query), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemInstruction}},
		},
	})
	if err != nil {
		s.logger().Error("Search error", "query", query, "error", err)
		return nil, err
	}

	result := toSearchResult(resp)
	s.logger().Debug("Search completed", "query", query, "sources", len(result.Sources))
	return result, nil
}

func (s *GeminiSearcher) model() string {
	if s.Model == "" {
		return string(clients.DefaultModel)
	}
	return s.Model
}

func (s *GeminiSearcher) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func toSearchResult(resp *genai.GenerateContentResponse) *SearchResult {
	text := ""
	// Text dereferences the first candidate without a nil check
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		text = resp.Text()
	}
	if text == "" {
		text = NoResultsText
	}

	return &SearchResult{
		Text:    text,
		Sources: uniqueSources(extractSources(groundingChunks(resp))),
	}
}

func groundingChunks(resp *genai.GenerateContentResponse) []*genai.GroundingChunk {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	gm := resp.Candidates[0].GroundingMetadata
	if gm == nil {
		return nil
	}
	return gm.GroundingChunks
}

// extractSources keeps chunks with a web reference, filling in default
// titles and URIs.
func extractSources(chunks []*genai.GroundingChunk) []Source {
	sources := make([]Source, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		src := Source{Title: chunk.Web.Title, URI: chunk.Web.URI}
		if src.Title == "" {
			src.Title = defaultSourceTitle
		}
		if src.URI == "" {
			src.URI = defaultSourceURI
		}
		sources = append(sources, src)
	}
	return sources
}

// uniqueSources drops repeated URIs, keeping the first occurrence in place.
func uniqueSources(sources []Source) []Source {
	unique := make([]Source, 0, len(sources))
	seen := make(map[string]bool)
	for _, src := range sources {
		if !seen[src.URI] {
			seen[src.URI] = true
			unique = append(unique, src)
		}
	}
	return unique
}
