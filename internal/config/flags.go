package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// DefaultLogFile is the side-channel log written next to stderr.
func DefaultLogFile() string {
	return filepath.Join(os.TempDir(), "voxserve.log")
}

func BindLoggingFlags(flags *pflag.FlagSet) {
	flags.Bool(KeyVerbose, false, "Enable verbose logs")
	flags.Bool(KeyJSON, false, "Enable JSON logging")
	flags.String(KeyLogFile, DefaultLogFile(), "Log file written in addition to stderr; empty disables it")
}

func BindProgressFlag(flags *pflag.FlagSet) {
	flags.Bool(KeyNoProgress, false, "Disable progress indicators")
}

func BindModelFlags(flags *pflag.FlagSet) {
	flags.String(KeyModel, "small", "Whisper model name or model file path")
	flags.String(KeyModelDir, "", "Directory where whisper models are stored")
}

func BindASRFlags(flags *pflag.FlagSet) {
	flags.String(KeyASRBackend, "whisper", "Speech recognition backend: whisper|openai|google")
	flags.String(KeyLanguage, "auto", "Language code (auto|en|de|...) for transcription")
	flags.Bool(KeyAutoDownload, true, "Automatically download missing whisper models")
	flags.String(KeyASRURL, "", "Base URL of an OpenAI-compatible transcription server")
	flags.String(KeyASRModel, "", "Model name for remote speech recognition backends")
}

func BindCleanupFlags(flags *pflag.FlagSet) {
	flags.Bool(KeyCleanup, true, "Refine transcripts with a language model")
	flags.String(KeyCleanupBackend, "ollama", "Cleanup backend: ollama|openai|gemini")
	flags.String(KeyCleanupModel, "", "Cleanup model name")
	flags.String(KeyCleanupURL, "", "Base URL of the cleanup model server")
	flags.String(KeyCleanupPrompt, "general", "Default cleanup prompt name")
	flags.Int(KeyCleanupMaxTokens, 512, "Maximum tokens generated by the cleanup model")
	flags.Float64(KeyCleanupTemperature, 0.3, "Sampling temperature for the cleanup model")
	flags.String(KeyPromptsFile, "", "JSON file of custom cleanup prompts (default: user config dir)")
}
