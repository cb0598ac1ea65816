// Package config layers command-line flags, VOXSERVE_* environment variables
// and built-in defaults into one runtime configuration.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "VOXSERVE"

const (
	KeyVerbose            = "verbose"
	KeyJSON               = "json"
	KeyLogFile            = "log-file"
	KeyNoProgress         = "no-progress"
	KeyASRBackend         = "asr-backend"
	KeyModel              = "model"
	KeyModelDir           = "model-dir"
	KeyLanguage           = "language"
	KeyAutoDownload       = "auto-download"
	KeyASRURL             = "asr-url"
	KeyASRModel           = "asr-model"
	KeyCleanup            = "cleanup"
	KeyCleanupBackend     = "cleanup-backend"
	KeyCleanupModel       = "cleanup-model"
	KeyCleanupURL         = "cleanup-url"
	KeyCleanupPrompt      = "cleanup-prompt"
	KeyCleanupMaxTokens   = "cleanup-max-tokens"
	KeyCleanupTemperature = "cleanup-temperature"
	KeyPromptsFile        = "prompts-file"

	keyOpenAIAPIKey = "openai-api-key"
	keyGeminiAPIKey = "gemini-api-key"
)

type Config struct {
	Log     LogConfig
	ASR     ASRConfig
	Cleanup CleanupConfig
}

type LogConfig struct {
	Verbose    bool
	JSON       bool
	File       string
	NoProgress bool
}

type ASRConfig struct {
	Backend      string
	Model        string
	ModelDir     string
	Language     string
	AutoDownload bool
	BaseURL      string
	RemoteModel  string
	APIKey       string
}

type CleanupConfig struct {
	Enabled     bool
	Backend     string
	Model       string
	BaseURL     string
	APIKey      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	PromptsFile string
}

// LoadDotEnv reads KEY=value pairs from files into the process environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		_ = godotenv.Load(path)
	}
}

// Load resolves the configuration. Explicitly set flags win over environment
// variables, which win over flag defaults.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv(keyOpenAIAPIKey, "VOXSERVE_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv(keyGeminiAPIKey, "VOXSERVE_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Log: LogConfig{
			Verbose:    v.GetBool(KeyVerbose),
			JSON:       v.GetBool(KeyJSON),
			File:       strings.TrimSpace(v.GetString(KeyLogFile)),
			NoProgress: v.GetBool(KeyNoProgress),
		},
		ASR: ASRConfig{
			Backend:      normalize(v.GetString(KeyASRBackend)),
			Model:        strings.TrimSpace(v.GetString(KeyModel)),
			ModelDir:     strings.TrimSpace(v.GetString(KeyModelDir)),
			Language:     sanitizeLanguage(v.GetString(KeyLanguage)),
			AutoDownload: v.GetBool(KeyAutoDownload),
			BaseURL:      strings.TrimSpace(v.GetString(KeyASRURL)),
			RemoteModel:  strings.TrimSpace(v.GetString(KeyASRModel)),
			APIKey:       v.GetString(keyOpenAIAPIKey),
		},
		Cleanup: CleanupConfig{
			Enabled:     v.GetBool(KeyCleanup),
			Backend:     normalize(v.GetString(KeyCleanupBackend)),
			Model:       strings.TrimSpace(v.GetString(KeyCleanupModel)),
			BaseURL:     strings.TrimSpace(v.GetString(KeyCleanupURL)),
			Prompt:      strings.TrimSpace(v.GetString(KeyCleanupPrompt)),
			MaxTokens:   v.GetInt(KeyCleanupMaxTokens),
			Temperature: v.GetFloat64(KeyCleanupTemperature),
			PromptsFile: strings.TrimSpace(v.GetString(KeyPromptsFile)),
		},
	}

	switch cfg.Cleanup.Backend {
	case "gemini":
		cfg.Cleanup.APIKey = v.GetString(keyGeminiAPIKey)
	case "openai":
		cfg.Cleanup.APIKey = v.GetString(keyOpenAIAPIKey)
	}

	return cfg, nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func sanitizeLanguage(input string) string {
	trimmed := normalize(input)
	if trimmed == "" {
		return "auto"
	}
	return trimmed
}
