package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fmueller/voxserve/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestIsUsageError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{err: errors.New(`unknown command "bad" for "voxserve"`), want: true},
		{err: errors.New("unknown flag: --oops"), want: true},
		{err: errors.New("flag needs an argument: --model"), want: true},
		{err: errors.New(`invalid argument "x" for "--cleanup-max-tokens" flag`), want: true},
		{err: errors.New("server startup failed: download model \"small\": context deadline exceeded"), want: false},
		{err: nil, want: false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, isUsageError(tt.err), "%v", tt.err)
	}
}

func TestHelpTarget(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()
	require.Equal(t, "voxserve", helpTarget(root, nil))
	require.Equal(t, "voxserve", helpTarget(root, []string{"--badflag"}))
	require.Equal(t, "voxserve", helpTarget(root, []string{"badcmd"}))
	require.Equal(t, "voxserve setup", helpTarget(root, []string{"setup"}))
	require.Equal(t, "voxserve prompts", helpTarget(root, []string{"prompts", "extra"}))
}

func TestRunReportsUsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		hint string
	}{
		{name: "unknown flag", args: []string{"--bogus"}, hint: "Run 'voxserve --help' for usage."},
		{name: "extra argument", args: []string{"prompts", "extra"}, hint: "Run 'voxserve prompts --help' for usage."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := cli.NewRootCmd()
			root.SetOut(new(bytes.Buffer))
			stderr := new(bytes.Buffer)

			require.Equal(t, 1, run(root, tt.args, stderr))
			require.Contains(t, stderr.String(), "voxserve: ")
			require.Contains(t, stderr.String(), tt.hint)
		})
	}
}
