package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeboe/devweb/pkg/search"
)

const (
	serverName    = "devweb-mcp"
	serverVersion = "1.0.0"
)

type WebSearchArgs struct {
	Query string `json:"query" jsonschema:"the question or keywords to search the web for"`
}

// NewServer returns an MCP server exposing the web_search tool.
func NewServer(searcher *search.GeminiSearcher) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "web_search",
		Description: "Answer a question using Google Search grounded Gemini. Returns a markdown answer and the cited web sources.",
	}, webSearchHandler(searcher))

	return server
}

func webSearchHandler(searcher *search.GeminiSearcher) mcp.ToolHandlerFor[WebSearchArgs, search.SearchResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args WebSearchArgs) (*mcp.CallToolResult, search.SearchResult, error) {
		if strings.TrimSpace(args.Query) == "" {
			return nil, search.SearchResult{}, errors.New("query is required")
		}

		result, err := searcher.PerformSearch(ctx, args.Query)
		if err != nil {
			return nil, search.SearchResult{}, err
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: result.Markdown()},
			},
		}, *result, nil
	}
}

// Handler serves server over streamable HTTP.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

// ServeStdio blocks serving server on stdin/stdout until ctx is done or the client disconnects.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
