package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/fmueller/voxserve/internal/refine"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI generates through the completions endpoint of an OpenAI-compatible
// server such as llama.cpp or LM Studio.
type OpenAI struct {
	model  string
	client *openai.Client
}

func NewOpenAI(model, baseURL, apiKey string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{model: model, client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Format(messages []refine.Message) (string, error) {
	return FormatChatML(messages)
}

func (o *OpenAI) Generate(ctx context.Context, prompt string, opts refine.GenerateOptions) (string, error) {
	resp, err := o.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       o.model,
		Prompt:      prompt,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Text, nil
}
