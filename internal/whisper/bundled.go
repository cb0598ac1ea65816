package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fmueller/voxserve/internal/asr"
	"go.uber.org/zap"
)

const pathOverrideEnv = "VOXSERVE_WHISPER_PATH"

// BundledEngine runs the whisper-cli binary shipped next to voxserve once per
// audio file and reads back its JSON output.
type BundledEngine struct {
	Executable string
	ModelPath  string
	Language   string
	Logger     *zap.Logger
}

func NewBundledEngine(modelPath, language string, logger *zap.Logger) (*BundledEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is required")
	}

	executable, err := resolveExecutable()
	if err != nil {
		return nil, err
	}

	return &BundledEngine{Executable: executable, ModelPath: modelPath, Language: language, Logger: logger}, nil
}

func resolveExecutable() (string, error) {
	if override := strings.TrimSpace(os.Getenv(pathOverrideEnv)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return "", fmt.Errorf("%s is not executable: %w", pathOverrideEnv, err)
		}
		return override, nil
	}

	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve voxserve executable path: %w", err)
	}

	return ResolveBundledEnginePath(self)
}

func ResolveBundledEnginePath(selfExecutable string) (string, error) {
	for _, candidate := range EnginePathCandidates(selfExecutable) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("bundled whisper engine not found near %s; set %s or install whisper-cli at ../libexec/whisper/%s", selfExecutable, pathOverrideEnv, engineBinaryName())
}

func EnginePathCandidates(selfExecutable string) []string {
	binDir := filepath.Dir(selfExecutable)
	engineName := engineBinaryName()
	hostTarget := fmt.Sprintf("%s_%s", runtime.GOOS, normalizeArch(runtime.GOARCH))

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, "packaging", "whisper", hostTarget, engineName),
		filepath.Join(binDir, engineName),
	}
}

func (b *BundledEngine) Transcribe(ctx context.Context, audioPath string) (asr.Result, error) {
	if strings.TrimSpace(audioPath) == "" {
		return asr.Result{}, errors.New("audio path is required")
	}

	if err := ensureExecutable(b.Executable); err != nil {
		return asr.Result{}, fmt.Errorf("bundled whisper engine missing or not executable: %w", err)
	}

	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("voxserve-%d", time.Now().UnixNano()))
	jsonOut := outBase + ".json"
	defer os.Remove(jsonOut)

	cmd := exec.CommandContext(ctx, b.Executable, b.args(audioPath, outBase)...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	b.Logger.Debug("running whisper engine", zap.String("engine", b.Executable), zap.Strings("args", cmd.Args[1:]))
	if err := cmd.Run(); err != nil {
		return asr.Result{}, classifyRunError(b.Executable, err, strings.TrimSpace(stderr.String()))
	}

	content, err := os.ReadFile(jsonOut)
	if err != nil {
		return asr.Result{}, fmt.Errorf("read whisper output: %w", err)
	}

	return ParseOutput(content)
}

func (b *BundledEngine) args(audioPath, outBase string) []string {
	args := []string{"-m", b.ModelPath, "-f", audioPath, "-oj", "-of", outBase}
	lang := strings.TrimSpace(b.Language)
	if lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}
	return args
}

func classifyRunError(executable string, err error, errText string) error {
	if isMissingSharedLibraryError(errText) {
		return fmt.Errorf("bundled whisper engine at %s is missing required shared libraries (%s); rebuild whisper-cli with BUILD_SHARED_LIBS=OFF", executable, errText)
	}
	if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
		return fmt.Errorf("bundled whisper engine crashed with an illegal CPU instruction; "+
			"set %s to a whisper-cli binary built for your CPU", pathOverrideEnv)
	}
	if errText == "" {
		return fmt.Errorf("whisper transcribe failed: %w", err)
	}
	return fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}

func normalizeArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	default:
		return arch
	}
}
