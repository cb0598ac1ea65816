package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fmueller/voxserve/internal/refine"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type Gemini struct {
	model  string
	client *genai.Client
}

func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required for the gemini cleanup backend")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{model: model, client: client}, nil
}

func (g *Gemini) Format(messages []refine.Message) (string, error) {
	return FormatPlain(messages)
}

func (g *Gemini) Generate(ctx context.Context, prompt string, opts refine.GenerateOptions) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: int32(opts.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
