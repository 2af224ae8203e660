package clients

import (
	"context"

	"google.golang.org/genai"
)

// ModelType names a Gemini model.
type ModelType string

const (
	// DefaultModel is the model used for grounded search.
	DefaultModel ModelType = "gemini-3-flash-preview"
)

// NewGeminiModels creates a Gemini API client bound to apiKey and returns its
// Models service. A fresh client is built on every call; nothing is pooled.
func NewGeminiModels(ctx context.Context, apiKey string) (*genai.Models, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}
