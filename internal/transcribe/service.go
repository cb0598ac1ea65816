// Package transcribe turns one audio path into a transcription response:
// speech recognition first, then optional cleanup of the recognized text.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fmueller/voxserve/internal/asr"
	"github.com/fmueller/voxserve/internal/prompts"
	"github.com/fmueller/voxserve/internal/refine"
	"go.uber.org/zap"
)

var (
	ErrAudioNotFound = errors.New("audio file not found")
	ErrFailed        = errors.New("transcription failed")
)

// Error carries the client-facing message for a failed transcription.
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.kind
}

type Response struct {
	Success      bool           `json:"success"`
	Text         string         `json:"text"`
	OriginalText *string        `json:"original_text"`
	Sentences    []asr.Sentence `json:"sentences"`
}

type Options struct {
	Engine        asr.Engine
	Refiner       *refine.Refiner
	DefaultPrompt string
	Logger        *zap.Logger
}

type Service struct {
	engine        asr.Engine
	refiner       *refine.Refiner
	defaultPrompt string
	logger        *zap.Logger
}

func NewService(opts Options) (*Service, error) {
	if opts.Engine == nil {
		return nil, errors.New("transcription engine is required")
	}
	if opts.DefaultPrompt == "" {
		opts.DefaultPrompt = prompts.General
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{
		engine:        opts.Engine,
		refiner:       opts.Refiner,
		defaultPrompt: opts.DefaultPrompt,
		logger:        opts.Logger,
	}, nil
}

// Transcribe checks that audioPath exists, runs the engine once and applies
// cleanup when a refiner is enabled. cleanupPrompt overrides the default
// prompt name when non-empty.
func (s *Service) Transcribe(ctx context.Context, audioPath, cleanupPrompt string) (Response, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return Response{}, &Error{kind: ErrAudioNotFound, message: "Audio file not found: " + audioPath}
	}

	s.logger.Info("transcribing", zap.String("audio", audioPath))
	started := time.Now()

	result, err := s.run(ctx, audioPath)
	if err != nil {
		s.logger.Error("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return Response{}, &Error{kind: ErrFailed, message: "Transcription failed: " + err.Error()}
	}
	result = asr.Normalize(result)
	s.logger.Info("transcription finished", zap.Duration("elapsed", time.Since(started)), zap.Int("sentences", len(result.Sentences)))

	resp := Response{
		Success:   true,
		Text:      result.Text,
		Sentences: result.Sentences,
	}

	if s.refiner != nil && s.refiner.Enabled() {
		prompt := cleanupPrompt
		if prompt == "" {
			prompt = s.defaultPrompt
		}
		s.logger.Info("applying text cleanup", zap.String("prompt", prompt))

		outcome := s.refiner.Refine(ctx, result.Text, prompt)
		resp.Text = outcome.Text
		if outcome.WasRefined && outcome.OriginalText != "" {
			original := outcome.OriginalText
			resp.OriginalText = &original
		}
	}

	return resp, nil
}

func (s *Service) run(ctx context.Context, audioPath string) (result asr.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("engine panicked: %v", rec)
		}
	}()
	return s.engine.Transcribe(ctx, audioPath)
}
