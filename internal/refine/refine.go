package refine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fmueller/voxserve/internal/prompts"
	"go.uber.org/zap"
)

const (
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.3

	// Candidates shorter than this share of the raw text are treated as
	// truncated or degenerate output.
	minLengthRatio = 0.3

	userPrefix = "Clean up this text:\n\n"
)

var ErrDisabled = errors.New("refinement disabled")

type Outcome struct {
	Text         string
	WasRefined   bool
	OriginalText string
}

type Options struct {
	Capability  Capability
	Prompts     *prompts.Set
	MaxTokens   int
	Temperature float32
	Logger      *zap.Logger
}

type Refiner struct {
	capability  Capability
	prompts     *prompts.Set
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

func New(opts Options) *Refiner {
	if opts.Prompts == nil {
		opts.Prompts = prompts.Builtin()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Refiner{
		capability:  opts.Capability,
		prompts:     opts.Prompts,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		logger:      opts.Logger,
	}
}

func (r *Refiner) Enabled() bool {
	return r.capability.Enabled()
}

func (r *Refiner) Prompts() []string {
	return r.prompts.Names()
}

// Refine runs text through the refinement model and returns either the
// accepted candidate or text unchanged. It never fails: model errors fall back
// to the raw text.
func (r *Refiner) Refine(ctx context.Context, text, promptName string) Outcome {
	unchanged := Outcome{Text: text}
	if strings.TrimSpace(text) == "" {
		return unchanged
	}

	candidate, err := r.generate(ctx, text, promptName)
	if err != nil {
		if !errors.Is(err, ErrDisabled) {
			r.logger.Error("text cleanup failed, using original text", zap.Error(err))
		}
		return unchanged
	}

	r.logger.Info("text cleanup complete", zap.Int("output_chars", utf8.RuneCountInString(candidate)))
	if !Acceptable(text, candidate) {
		r.logger.Warn("cleanup output too short, using original text")
		return unchanged
	}

	outcome := Outcome{Text: candidate, WasRefined: true}
	if candidate != text {
		outcome.OriginalText = text
	}
	return outcome
}

// Acceptable reports whether a stripped candidate may replace raw: it must be
// non-empty and at least 30% of raw's length in code points.
func Acceptable(raw, candidate string) bool {
	if candidate == "" {
		return false
	}
	return float64(utf8.RuneCountInString(candidate)) >= float64(utf8.RuneCountInString(raw))*minLengthRatio
}

func (r *Refiner) generate(ctx context.Context, text, promptName string) (candidate string, err error) {
	if !r.capability.Enabled() {
		return "", ErrDisabled
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("refinement model panicked: %v", rec)
		}
	}()

	name, instruction := r.prompts.Resolve(promptName)
	if name != promptName {
		r.logger.Debug("unknown cleanup prompt, using default", zap.String("requested", promptName), zap.String("prompt", name))
	}

	messages := []Message{
		{Role: RoleSystem, Content: instruction},
		{Role: RoleUser, Content: userPrefix + text},
	}

	model := r.capability.model
	prompt, err := model.Format(messages)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}

	r.logger.Info("cleaning up text", zap.String("prompt", name), zap.Int("input_chars", utf8.RuneCountInString(text)))
	response, err := model.Generate(ctx, prompt, GenerateOptions{MaxTokens: r.maxTokens, Temperature: r.temperature})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return strings.TrimSpace(strings.TrimPrefix(response, prompt)), nil
}
