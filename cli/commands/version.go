package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/version"
)

// newVersionCommand creates the version command.
func newVersionCommand() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if full {
				fmt.Println(version.Get().FullString())
				return
			}
			fmt.Println(version.Get().String())
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print build details")
	return cmd
}
