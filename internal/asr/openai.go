package asr

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIEngine transcribes through an OpenAI-compatible audio endpoint, which
// includes self-hosted parakeet and whisper servers.
type OpenAIEngine struct {
	client   *openai.Client
	model    string
	language string
	logger   *zap.Logger
}

type OpenAIOptions struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
	Logger   *zap.Logger
}

func NewOpenAIEngine(opts OpenAIOptions) *OpenAIEngine {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Model == "" {
		opts.Model = openai.Whisper1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	language := strings.TrimSpace(opts.Language)
	if language == "auto" {
		language = ""
	}

	return &OpenAIEngine{
		client:   openai.NewClientWithConfig(cfg),
		model:    opts.Model,
		language: language,
		logger:   opts.Logger,
	}
}

func (e *OpenAIEngine) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	e.logger.Debug("requesting transcription", zap.String("model", e.model), zap.String("audio", audioPath))

	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.model,
		FilePath: audioPath,
		Language: e.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Result{}, fmt.Errorf("transcription request failed: %w", err)
	}

	res := Result{Text: strings.TrimSpace(resp.Text)}
	for _, seg := range resp.Segments {
		res.Sentences = append(res.Sentences, Sentence{
			Text:  strings.TrimSpace(seg.Text),
			Start: seg.Start,
			End:   seg.End,
		})
	}
	return Normalize(res), nil
}
