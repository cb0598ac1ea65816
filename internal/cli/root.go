package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fmueller/voxserve/internal/asr"
	"github.com/fmueller/voxserve/internal/config"
	"github.com/fmueller/voxserve/internal/logging"
	"github.com/fmueller/voxserve/internal/platform"
	"github.com/fmueller/voxserve/internal/refine"
	"github.com/fmueller/voxserve/internal/version"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	cfg    config.Config
	logger *zap.Logger

	dotEnvFiles []string

	newEngineFn func(ctx context.Context, cfg config.ASRConfig) (asr.Engine, func(), error)
	newModelFn  func(ctx context.Context, cfg config.CleanupConfig) (refine.Model, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(newAppState())
}

func newAppState() *appState {
	app := &appState{}
	app.newEngineFn = app.openEngine
	app.newModelFn = openCleanupModel
	return app
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "voxserve",
		Short:         "Serve speech-to-text requests as line-delimited JSON on stdin/stdout",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			config.LoadDotEnv(app.dotEnvFiles...)

			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			app.cfg = cfg

			logger, err := logging.New(logging.Options{Verbose: cfg.Log.Verbose, JSON: cfg.Log.JSON, File: cfg.Log.File})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = app.log().Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.serve(cmd)
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	flags := cmd.PersistentFlags()
	config.BindLoggingFlags(flags)
	config.BindProgressFlag(flags)
	config.BindModelFlags(flags)
	config.BindASRFlags(flags)
	config.BindCleanupFlags(flags)

	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newPromptsCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.cfg.ASR.ModelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.cfg.Log.NoProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
