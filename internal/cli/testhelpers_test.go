package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fmueller/voxserve/internal/asr"
	"github.com/fmueller/voxserve/internal/config"
	"github.com/fmueller/voxserve/internal/refine"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	result asr.Result
	calls  int
	closed bool
}

func (f *fakeEngine) Transcribe(_ context.Context, _ string) (asr.Result, error) {
	f.calls++
	return f.result, nil
}

type fakeModel struct {
	response string
}

func (f *fakeModel) Format(messages []refine.Message) (string, error) {
	return messages[0].Content + "\n" + messages[1].Content, nil
}

func (f *fakeModel) Generate(_ context.Context, _ string, _ refine.GenerateOptions) (string, error) {
	return f.response, nil
}

// newTestApp returns an app whose collaborators are fakes and which never
// reads a .env file from the working directory.
func newTestApp(engine *fakeEngine, model refine.Model, modelErr error) *appState {
	app := &appState{dotEnvFiles: []string{filepath.Join(os.TempDir(), "voxserve-test-missing.env")}}
	app.newEngineFn = func(context.Context, config.ASRConfig) (asr.Engine, func(), error) {
		if engine == nil {
			return nil, nil, errors.New("model file is corrupt")
		}
		return engine, func() { engine.closed = true }, nil
	}
	app.newModelFn = func(context.Context, config.CleanupConfig) (refine.Model, error) {
		return model, modelErr
	}
	return app
}

func runCommand(t *testing.T, app *appState, args []string, stdin string) (stdout string, stderr string, err error) {
	t.Helper()

	cmd := newRootCmd(app)
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(append([]string{"--log-file="}, args...))

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeAudio(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return path
}

func outputLines(stdout string) []string {
	return strings.Split(strings.TrimRight(stdout, "\n"), "\n")
}
