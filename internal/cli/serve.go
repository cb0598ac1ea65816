package cli

import (
	"context"
	"fmt"

	"github.com/fmueller/voxserve/internal/asr"
	"github.com/fmueller/voxserve/internal/config"
	"github.com/fmueller/voxserve/internal/llm"
	"github.com/fmueller/voxserve/internal/platform"
	"github.com/fmueller/voxserve/internal/prompts"
	"github.com/fmueller/voxserve/internal/refine"
	"github.com/fmueller/voxserve/internal/server"
	"github.com/fmueller/voxserve/internal/transcribe"
	"github.com/fmueller/voxserve/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	asrBackendWhisper = "whisper"
	asrBackendOpenAI  = "openai"
	asrBackendGoogle  = "google"
)

// serve loads the collaborators once and hands stdin/stdout to the command
// loop. A speech backend that fails to load is fatal; a cleanup backend that
// fails to load only disables refinement.
func (a *appState) serve(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	engine, closeEngine, err := a.newEngineFn(ctx, a.cfg.ASR)
	if err != nil {
		a.log().Error("speech recognition backend failed to load", zap.String("backend", a.cfg.ASR.Backend), zap.Error(err))
		if writeErr := server.WriteStartupError(out, err); writeErr != nil {
			a.log().Warn("failed to report startup error", zap.Error(writeErr))
		}
		return fmt.Errorf("server startup failed: %w", err)
	}
	defer closeEngine()

	refiner := refine.New(refine.Options{
		Capability:  a.cleanupCapability(ctx),
		Prompts:     a.loadPrompts(),
		MaxTokens:   a.cfg.Cleanup.MaxTokens,
		Temperature: float32(a.cfg.Cleanup.Temperature),
		Logger:      a.log(),
	})

	service, err := transcribe.NewService(transcribe.Options{
		Engine:        asr.Serialize(engine),
		Refiner:       refiner,
		DefaultPrompt: a.cfg.Cleanup.Prompt,
		Logger:        a.log(),
	})
	if err != nil {
		return err
	}

	a.log().Info("server ready",
		zap.String("asr_backend", a.cfg.ASR.Backend),
		zap.Bool("cleanup", refiner.Enabled()),
		zap.Strings("prompts", refiner.Prompts()),
	)

	return server.New(service, a.log()).Run(ctx, cmd.InOrStdin(), out)
}

func (a *appState) openEngine(ctx context.Context, cfg config.ASRConfig) (asr.Engine, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case asrBackendWhisper, "":
		modelDir, err := a.modelStorageDir()
		if err != nil {
			return nil, nil, err
		}
		resolved, err := whisper.EnsureModel(ctx, whisper.EnsureOptions{
			Model:        cfg.Model,
			ModelDir:     modelDir,
			AutoDownload: cfg.AutoDownload,
			NoProgress:   !a.progressEnabled(),
			Logger:       a.log(),
		})
		if err != nil {
			return nil, nil, err
		}
		engine, err := whisper.NewBundledEngine(resolved.Path, cfg.Language, a.log())
		if err != nil {
			return nil, nil, err
		}
		a.log().Debug("whisper engine ready", zap.String("executable", engine.Executable), zap.String("model", resolved.Path))
		return engine, noop, nil
	case asrBackendOpenAI:
		return asr.NewOpenAIEngine(asr.OpenAIOptions{
			BaseURL:  cfg.BaseURL,
			APIKey:   cfg.APIKey,
			Model:    cfg.RemoteModel,
			Language: cfg.Language,
			Logger:   a.log(),
		}), noop, nil
	case asrBackendGoogle:
		engine, err := asr.NewGoogleEngine(ctx, asr.GoogleOptions{
			Language: cfg.Language,
			Model:    cfg.RemoteModel,
			Logger:   a.log(),
		})
		if err != nil {
			return nil, nil, err
		}
		return engine, func() { _ = engine.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown asr backend %q (supported: %s, %s, %s)", cfg.Backend, asrBackendWhisper, asrBackendOpenAI, asrBackendGoogle)
	}
}

func openCleanupModel(ctx context.Context, cfg config.CleanupConfig) (refine.Model, error) {
	return llm.New(ctx, llm.Config{
		Backend: cfg.Backend,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
	})
}

func (a *appState) cleanupCapability(ctx context.Context) refine.Capability {
	if !a.cfg.Cleanup.Enabled {
		return refine.Disabled("cleanup disabled")
	}

	model, err := a.newModelFn(ctx, a.cfg.Cleanup)
	if err != nil {
		a.log().Warn("cleanup model unavailable; serving raw transcripts", zap.String("backend", a.cfg.Cleanup.Backend), zap.Error(err))
		return refine.Disabled(err.Error())
	}
	return refine.Enabled(model)
}

// loadPrompts returns the built-in prompts merged with the user's prompt
// file. Any problem with the file leaves the built-ins in place.
func (a *appState) loadPrompts() *prompts.Set {
	set := prompts.Builtin()

	path, err := platform.ResolvePromptsFile(a.cfg.Cleanup.PromptsFile)
	if err != nil {
		a.log().Warn("could not locate prompts file", zap.Error(err))
		return set
	}

	overrides, err := prompts.LoadOverrides(path)
	if err != nil {
		a.log().Warn("ignoring custom prompts", zap.String("path", path), zap.Error(err))
		return set
	}

	prompts.Apply(set, overrides)
	if len(overrides) > 0 {
		a.log().Info("loaded custom prompts", zap.String("path", path), zap.Int("count", len(overrides)))
	}
	return set
}
