//go:build integration

package whisper

import (
	"context"
	"testing"
	"time"

	"github.com/fmueller/voxserve/internal/download"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureModelDownloadsPinnedTinyModel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	modelDir := t.TempDir()
	resolved, err := EnsureModel(ctx, EnsureOptions{
		Model:        "tiny",
		ModelDir:     modelDir,
		AutoDownload: true,
		NoProgress:   true,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)
	require.False(t, resolved.NeedsDownload)
	require.NoError(t, download.VerifyFileChecksum(resolved.Path, resolved.SHA256))

	again, err := ResolveModel("tiny", modelDir)
	require.NoError(t, err)
	require.False(t, again.NeedsDownload)
}
