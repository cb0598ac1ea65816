package version

import (
	"errors"
	"runtime/debug"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedGit answers each git invocation by its subcommand and flags.
type scriptedGit struct {
	repo     bool
	tagged   bool
	describe string
	descErr  error
}

func (g scriptedGit) run(args ...string) (string, error) {
	switch {
	case args[0] == "rev-parse":
		if !g.repo {
			return "", errors.New("not a git repository")
		}
		return ".git", nil
	case slices.Contains(args, "--exact-match"):
		if g.tagged {
			return "v1.0.0", nil
		}
		return "", errors.New("no tag exactly matches")
	default:
		return g.describe, g.descErr
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		git  scriptedGit
		want string
	}{
		{name: "not a repo", base: "1.0.0", git: scriptedGit{}, want: "1.0.0"},
		{name: "empty base", base: "", git: scriptedGit{}, want: "0.0.0"},
		{name: "tagged release", base: "1.0.0", git: scriptedGit{repo: true, tagged: true}, want: "1.0.0"},
		{name: "commits after tag", base: "1.0.0", git: scriptedGit{repo: true, describe: "v1.0.0-3-gabcdef"}, want: "1.0.0-3-gabcdef"},
		{name: "dirty tree", base: "1.0.0", git: scriptedGit{repo: true, describe: "v1.0.0-3-gabcdef-dirty"}, want: "1.0.0-3-gabcdef-dirty"},
		{name: "no tags", base: "1.0.0", git: scriptedGit{repo: true, describe: "abcdef"}, want: "1.0.0-abcdef"},
		{name: "describe fails", base: "1.0.0", git: scriptedGit{repo: true, descErr: errors.New("boom")}, want: "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, describe(tt.base, tt.git.run))
		})
	}
}

func buildInfo(settings ...debug.BuildSetting) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
}

func TestWithBuildInfoFillsMissingFields(t *testing.T) {
	t.Parallel()

	info := withBuildInfo(Info{Version: "1.0.0"}, buildInfo(
		debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef"},
		debug.BuildSetting{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		debug.BuildSetting{Key: "vcs.modified", Value: "true"},
	))

	require.Equal(t, Info{Version: "1.0.0", Commit: "0123456789abcdef-dirty", Date: "2026-10-01T12:00:00Z"}, info)
	require.Equal(t, "1.0.0 (commit 0123456-dirty, built 2026-10-01T12:00:00Z)", info.String())
}

func TestWithBuildInfoKeepsLinkerValues(t *testing.T) {
	t.Parallel()

	info := withBuildInfo(Info{Version: "1.2.0", Commit: "feedface", Date: "today"}, buildInfo(
		debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef"},
	))
	require.Equal(t, "feedface", info.Commit)
	require.Equal(t, "today", info.Date)

	missing := withBuildInfo(Info{Version: "1.2.0"}, func() (*debug.BuildInfo, bool) { return nil, false })
	require.Equal(t, "1.2.0", missing.String())
}
