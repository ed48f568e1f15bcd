package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/trackrunner/internal/engine"
)

func newScriptsCmd(registry *engine.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "Lists the automation scripts this binary can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range registry.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
