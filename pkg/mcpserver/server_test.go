package mcpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/mikeboe/devweb/pkg/search"
)

type stubGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls int
}

func (g *stubGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	g.calls++
	return g.resp, g.err
}

func testSearcher(gen *stubGenerator) *search.GeminiSearcher {
	return &search.GeminiSearcher{
		Credential: func() string { return "key" },
		NewClient: func(ctx context.Context, key string) (search.ContentGenerator, error) {
			return gen, nil
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestWebSearchHandler(t *testing.T) {
	gen := &stubGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Go 1.18 added generics."}}},
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{
				{Web: &genai.GroundingChunkWeb{Title: "Go blog", URI: "https://go.dev/blog"}},
			}},
		}},
	}}
	handler := webSearchHandler(testSearcher(gen))

	res, out, err := handler(context.Background(), nil, WebSearchArgs{Query: "when did go get generics"})

	require.NoError(t, err)
	assert.Equal(t, "Go 1.18 added generics.", out.Text)
	assert.Equal(t, []search.Source{{Title: "Go blog", URI: "https://go.dev/blog"}}, out.Sources)

	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Go 1.18 added generics.")
	assert.Contains(t, text.Text, "1. [Go blog](https://go.dev/blog)")
}

func TestWebSearchHandlerRejectsEmptyQuery(t *testing.T) {
	gen := &stubGenerator{}
	handler := webSearchHandler(testSearcher(gen))

	_, _, err := handler(context.Background(), nil, WebSearchArgs{Query: " "})

	assert.EqualError(t, err, "query is required")
	assert.Zero(t, gen.calls)
}

func TestWebSearchHandlerPropagatesProviderError(t *testing.T) {
	providerErr := errors.New("permission denied")
	handler := webSearchHandler(testSearcher(&stubGenerator{err: providerErr}))

	_, _, err := handler(context.Background(), nil, WebSearchArgs{Query: "q"})

	assert.ErrorIs(t, err, providerErr)
}

func TestNewServerAndHandler(t *testing.T) {
	server := NewServer(testSearcher(&stubGenerator{}))
	require.NotNil(t, server)
	assert.NotNil(t, Handler(server))
}
