package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/devweb/pkg/config"
	"github.com/mikeboe/devweb/pkg/mcpserver"
	"github.com/mikeboe/devweb/pkg/search"
)

var (
	query   string
	asJSON  bool
	verbose bool
)

func main() {
	// It's okay if .env doesn't exist, as long as env vars are set
	_ = godotenv.Load()

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "devweb",
		Short:         "Search the web through Gemini with Google Search grounding",
		Long:          `devweb sends a question to Gemini with Google Search enabled and prints the answer followed by the web sources it cites.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout carries results and MCP frames, so logs go to stderr
			level := cfg.LogLevel
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			q := query
			if !cmd.Flags().Changed("query") {
				// Interactive Mode
				var err error
				q, err = readQuery(os.Stdin, os.Stdout)
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(q) == "" {
				return errors.New("query cannot be empty")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			result, err := search.PerformSearch(ctx, q)
			if err != nil {
				return err
			}
			return writeResult(os.Stdout, result, asJSON)
		},
	}

	rootCmd.Flags().StringVarP(&query, "query", "q", "", "The question to search for")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "mcp",
		Short: "Serve the web_search tool over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			slog.Info("Starting MCP server on stdio")
			return mcpserver.ServeStdio(ctx, mcpserver.NewServer(search.NewGeminiSearcher()))
		},
	})

	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err as plain text; failed searches are already logged.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
}

func readQuery(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter search query: ")
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read query: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func writeResult(w io.Writer, result *search.SearchResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err := fmt.Fprintln(w, result.Markdown())
	return err
}
