package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/config"
	"github.com/schemaplan/schemaplan/cli/internal/ui"
	"github.com/schemaplan/schemaplan/migrate/history"
	"github.com/schemaplan/schemaplan/schema"
)

// newNewCommand creates the new command, which scaffolds a model file.
func newNewCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "new <table>",
		Short: "Create a new model file",
		Long:  "Scaffold a model file for the given table in the models directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "model file format: json or yaml (default from config)")
	return cmd
}

func runNew(table, formatFlag string) error {
	cfg, store, err := openStore()
	if err != nil {
		return err
	}

	formatName := cfg.ModelFormat
	if formatFlag != "" {
		formatName = formatFlag
	}
	format, err := history.ParseModelFormat(formatName)
	if err != nil {
		return err
	}

	path := filepath.Join(store.ModelsDir(), fmt.Sprintf("%s.%s", table, format))
	if exists, _ := afero.Exists(config.AppFs, path); exists {
		return fmt.Errorf("model file already exists: %s", path)
	}

	name, err := store.SaveModel(modelTemplate(table), format)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Created model %s", filepath.Join(store.ModelsDir(), name))
	return nil
}

// modelTemplate returns the scaffold written for a fresh model.
func modelTemplate(table string) schema.Table {
	return schema.Table{
		Name: table,
		Columns: []schema.Column{
			{
				Name:       "id",
				Type:       schema.Simple(schema.TypeBigInt),
				PrimaryKey: &schema.PrimaryKeySpec{Enabled: true, AutoIncrement: true},
			},
			{
				Name:    "created_at",
				Type:    schema.Simple(schema.TypeTimestamptz),
				Default: schema.StringPtr("now()"),
			},
		},
	}
}
