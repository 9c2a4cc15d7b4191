package commands

import (
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/config"
	"github.com/schemaplan/schemaplan/cli/internal/ui"
	"github.com/schemaplan/schemaplan/migrate/history"
	"github.com/schemaplan/schemaplan/schema"
)

// newInitCommand creates the init command.
func newInitCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new schemaplan workspace",
		Long:  "Create the configuration file, the models directory and an example model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept all defaults without prompting")
	return cmd
}

func runInit(yes bool) error {
	ui.PrintHeader("schemaplan", "Schema-first database migrations")

	cfg := &config.Config{
		ModelsDir:     "models",
		MigrationsDir: "migrations",
		ModelFormat:   "json",
		Provider:      "postgres",
	}

	if !yes {
		questions := []*survey.Question{
			{
				Name: "provider",
				Prompt: &survey.Select{
					Message: "Default database provider:",
					Options: []string{"postgres", "mysql", "sqlite"},
					Default: "postgres",
				},
			},
			{
				Name: "format",
				Prompt: &survey.Select{
					Message: "Model file format:",
					Options: []string{"json", "yaml"},
					Default: "json",
				},
			},
			{
				Name:   "modelsDir",
				Prompt: &survey.Input{Message: "Models directory:", Default: "models"},
			},
			{
				Name:   "migrationsDir",
				Prompt: &survey.Input{Message: "Migrations directory:", Default: "migrations"},
			},
		}
		answers := struct {
			Provider      string
			Format        string
			ModelsDir     string
			MigrationsDir string
		}{}
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}
		cfg.Provider = answers.Provider
		cfg.ModelFormat = answers.Format
		cfg.ModelsDir = answers.ModelsDir
		cfg.MigrationsDir = answers.MigrationsDir
	}

	if exists, _ := afero.Exists(config.AppFs, ".schemaplan.yaml"); exists {
		return fmt.Errorf("workspace already initialized: .schemaplan.yaml exists")
	}

	store := history.NewStore(config.AppFs, cfg.ModelsDir, cfg.MigrationsDir)
	if err := store.EnsureLayout(); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	format, err := history.ParseModelFormat(cfg.ModelFormat)
	if err != nil {
		return err
	}
	name, err := store.SaveModel(exampleModel(), format)
	if err != nil {
		return err
	}

	ui.PrintSuccess("Created .schemaplan.yaml")
	ui.PrintSuccess("Created %s/ and %s/", cfg.ModelsDir, cfg.MigrationsDir)
	ui.PrintSuccess("Created example model %s", filepath.Join(cfg.ModelsDir, name))
	fmt.Println()
	return ui.PrintMarkdown(nextStepsMarkdown(cfg))
}

func nextStepsMarkdown(cfg *config.Config) string {
	return fmt.Sprintf(`## Next steps

1. Edit the models under **%s/** (one table per file)
2. Run `+"`schemaplan diff`"+` to preview the pending changes
3. Run `+"`schemaplan revision -m \"initial\"`"+` to record them
4. Run `+"`schemaplan sql`"+` to compile the migration for %s
`, cfg.ModelsDir, cfg.Provider)
}

// exampleModel returns the model scaffolded into a fresh workspace.
func exampleModel() schema.Table {
	return schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{
				Name:       "id",
				Type:       schema.Simple(schema.TypeBigInt),
				PrimaryKey: &schema.PrimaryKeySpec{Enabled: true, AutoIncrement: true},
			},
			{
				Name:   "email",
				Type:   schema.Varchar(255),
				Unique: schema.BoolShorthand(true),
			},
			{
				Name:     "name",
				Type:     schema.Simple(schema.TypeText),
				Nullable: true,
			},
			{
				Name:    "created_at",
				Type:    schema.Simple(schema.TypeTimestamptz),
				Default: schema.StringPtr("now()"),
			},
		},
	}
}
