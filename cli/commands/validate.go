package commands

import (
	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/ui"
)

// newValidateCommand creates the validate command.
func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the declared models",
		Long:  "Check the model files for duplicate names, missing primary keys and dangling references",
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	tables, err := loadTarget(store)
	if err != nil {
		return err
	}
	ui.PrintSuccess("%d model(s) are valid", len(tables))
	return nil
}
