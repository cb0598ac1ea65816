package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fmueller/voxserve/internal/cli"
	"github.com/spf13/cobra"
)

// Cobra reports argument and flag problems as plain errors; these fragments
// mark the ones where pointing at --help is useful.
var usageErrorFragments = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"invalid argument",
	"accepts ",
	"requires at least",
	"requires at most",
	"requires between",
	"required flag",
}

func main() {
	os.Exit(run(cli.NewRootCmd(), os.Args[1:], os.Stderr))
}

// run executes root with args and returns the process exit code. Protocol
// output, including a startup failure line, has already gone to stdout by
// the time an error reaches here.
func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintf(stderr, "voxserve: %v\n", err)
	if isUsageError(err) {
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", helpTarget(root, args))
	}
	return 1
}

func isUsageError(err error) bool {
	if err == nil {
		return false
	}

	message := strings.ToLower(err.Error())
	for _, fragment := range usageErrorFragments {
		if strings.Contains(message, fragment) {
			return true
		}
	}
	return false
}

// helpTarget names the deepest subcommand that args resolve to.
func helpTarget(root *cobra.Command, args []string) string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return root.CommandPath()
	}

	if found, _, err := root.Find(args); err == nil && found != nil {
		return found.CommandPath()
	}
	return root.CommandPath()
}
