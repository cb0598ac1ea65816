package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindLoggingFlags(flags)
	BindProgressFlag(flags)
	BindModelFlags(flags)
	BindASRFlags(flags)
	BindCleanupFlags(flags)
	return flags
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"VOXSERVE_ASR_BACKEND", "VOXSERVE_CLEANUP_BACKEND", "VOXSERVE_CLEANUP_MAX_TOKENS",
		"VOXSERVE_CLEANUP", "VOXSERVE_LANGUAGE", "VOXSERVE_MODEL",
		"VOXSERVE_OPENAI_API_KEY", "OPENAI_API_KEY", "VOXSERVE_GEMINI_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(newFlagSet())
	require.NoError(t, err)

	require.Equal(t, "whisper", cfg.ASR.Backend)
	require.Equal(t, "small", cfg.ASR.Model)
	require.Equal(t, "auto", cfg.ASR.Language)
	require.True(t, cfg.ASR.AutoDownload)
	require.True(t, cfg.Cleanup.Enabled)
	require.Equal(t, "ollama", cfg.Cleanup.Backend)
	require.Equal(t, "general", cfg.Cleanup.Prompt)
	require.Equal(t, 512, cfg.Cleanup.MaxTokens)
	require.InDelta(t, 0.3, cfg.Cleanup.Temperature, 1e-9)
	require.Equal(t, DefaultLogFile(), cfg.Log.File)
}

func TestLoadEnvironmentOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("VOXSERVE_ASR_BACKEND", " OpenAI ")
	t.Setenv("VOXSERVE_CLEANUP_MAX_TOKENS", "128")
	t.Setenv("VOXSERVE_CLEANUP", "false")
	t.Setenv("VOXSERVE_LANGUAGE", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(newFlagSet())
	require.NoError(t, err)

	require.Equal(t, "openai", cfg.ASR.Backend)
	require.Equal(t, "sk-test", cfg.ASR.APIKey)
	require.Equal(t, 128, cfg.Cleanup.MaxTokens)
	require.False(t, cfg.Cleanup.Enabled)
	require.Equal(t, "auto", cfg.ASR.Language)
}

func TestLoadFlagsWinOverEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("VOXSERVE_MODEL", "tiny")

	flags := newFlagSet()
	require.NoError(t, flags.Parse([]string{"--model", "medium", "--cleanup-backend", "gemini"}))
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(flags)
	require.NoError(t, err)
	require.Equal(t, "medium", cfg.ASR.Model)
	require.Equal(t, "gemini", cfg.Cleanup.Backend)
	require.Equal(t, "g-key", cfg.Cleanup.APIKey)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VOXSERVE_CLEANUP_BACKEND=openai\nVOXSERVE_MODEL=base\n"), 0o644))
	t.Setenv("VOXSERVE_MODEL", "tiny")

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	t.Cleanup(func() { _ = os.Unsetenv("VOXSERVE_CLEANUP_BACKEND") })

	cfg, err := Load(newFlagSet())
	require.NoError(t, err)
	require.Equal(t, "openai", cfg.Cleanup.Backend)
	require.Equal(t, "tiny", cfg.ASR.Model)
}
