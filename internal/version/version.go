// Package version reports what build of voxserve is running.
package version

import (
	"os/exec"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/fmueller/voxserve/internal/version.Version=...".
var (
	Version = "1.0.0"
	Commit  = ""
	Date    = ""
)

type Info struct {
	Version string
	Commit  string
	Date    string
}

// Current combines the linker-set values with VCS data the Go toolchain
// stamps into the binary. Inside a git checkout that is not on a release tag
// the version gains a describe suffix.
func Current() Info {
	info := Info{
		Version: describe(Version, runGit),
		Commit:  Commit,
		Date:    Date,
	}
	return withBuildInfo(info, debug.ReadBuildInfo)
}

// Resolve returns only the version string.
func Resolve() string {
	return Current().Version
}

func (i Info) String() string {
	var details []string
	if i.Commit != "" {
		details = append(details, "commit "+shortCommit(i.Commit))
	}
	if i.Date != "" {
		details = append(details, "built "+i.Date)
	}
	if len(details) == 0 {
		return i.Version
	}
	return i.Version + " (" + strings.Join(details, ", ") + ")"
}

type gitFunc func(args ...string) (string, error)

func describe(base string, git gitFunc) string {
	if base == "" {
		base = "0.0.0"
	}

	if _, err := git("rev-parse", "--git-dir"); err != nil {
		return base
	}
	if _, err := git("describe", "--tags", "--exact-match"); err == nil {
		return base
	}

	desc, err := git("describe", "--tags", "--dirty", "--always")
	if err != nil || desc == "" {
		return base
	}
	return base + "-" + strings.TrimPrefix(desc, "v"+base+"-")
}

func withBuildInfo(info Info, read func() (*debug.BuildInfo, bool)) Info {
	bi, ok := read()
	if !ok || bi == nil {
		return info
	}

	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = setting.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = setting.Value
			}
		case "vcs.modified":
			if setting.Value == "true" && info.Commit != "" && !strings.HasSuffix(info.Commit, "-dirty") {
				info.Commit += "-dirty"
			}
		}
	}
	return info
}

func shortCommit(commit string) string {
	hash, dirty, _ := strings.Cut(commit, "-")
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if dirty != "" {
		return hash + "-" + dirty
	}
	return hash
}

func runGit(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
