package cli

import (
	"fmt"

	"github.com/fmueller/voxserve/internal/refine"
	"github.com/spf13/cobra"
)

func newPromptsCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List available cleanup prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			refiner := refine.New(refine.Options{
				Capability: refine.Disabled("listing prompts"),
				Prompts:    app.loadPrompts(),
				Logger:     app.log(),
			})
			for _, name := range refiner.Prompts() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
