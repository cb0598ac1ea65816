package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/fmueller/voxserve/internal/refine"
)

const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"

	DefaultModel = "qwen2.5:0.5b-instruct"
)

type Config struct {
	Backend string
	Model   string
	BaseURL string
	APIKey  string
}

// New builds the refinement model selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (refine.Model, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	model := strings.TrimSpace(cfg.Model)

	switch backend {
	case BackendOllama, "":
		if model == "" {
			model = DefaultModel
		}
		return NewOllama(model, cfg.BaseURL), nil
	case BackendOpenAI:
		if model == "" {
			model = DefaultModel
		}
		return NewOpenAI(model, cfg.BaseURL, cfg.APIKey), nil
	case BackendGemini:
		return NewGemini(ctx, model, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unknown cleanup backend %q (supported: %s, %s, %s)", cfg.Backend, BackendOllama, BackendOpenAI, BackendGemini)
	}
}
