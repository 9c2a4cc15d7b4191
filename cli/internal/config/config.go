package config

import (
	"fmt"
	"path/filepath"

	goversion "github.com/hashicorp/go-version"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/schemaplan/schemaplan/cli/internal/version"
)

var AppFs = afero.NewOsFs()

// Config holds the application configuration
type Config struct {
	ModelsDir       string
	MigrationsDir   string
	ModelFormat     string
	Provider        string
	DatabaseURL     string
	RequiredVersion string
}

// LoadConfig loads configuration from various sources
func LoadConfig() (*Config, error) {
	// Find home directory
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	// Set config file paths
	viper.SetConfigName(".schemaplan")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "schemaplan"))

	// Set environment variable prefix
	viper.SetEnvPrefix("SCHEMAPLAN")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("models_dir", "models")
	viper.SetDefault("migrations_dir", "migrations")
	viper.SetDefault("model_format", "json")
	viper.SetDefault("provider", "postgres")

	// Try to read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Load .env file if it exists
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	// Load .env.local if it exists (higher priority)
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		ModelsDir:       viper.GetString("models_dir"),
		MigrationsDir:   viper.GetString("migrations_dir"),
		ModelFormat:     viper.GetString("model_format"),
		Provider:        viper.GetString("provider"),
		DatabaseURL:     viper.GetString("database_url"),
		RequiredVersion: viper.GetString("required_version"),
	}

	if err := cfg.CheckRequiredVersion(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CheckRequiredVersion verifies the running binary satisfies the
// version constraint pinned in the config file, if any.
func (c *Config) CheckRequiredVersion() error {
	if c.RequiredVersion == "" {
		return nil
	}
	constraint, err := goversion.NewConstraint(c.RequiredVersion)
	if err != nil {
		return fmt.Errorf("invalid required_version constraint %q: %w", c.RequiredVersion, err)
	}
	current, err := goversion.NewVersion(version.Version)
	if err != nil {
		// Development builds carry a non-semver version; skip the check.
		return nil
	}
	if !constraint.Check(current) {
		return fmt.Errorf("schemaplan %s does not satisfy required_version %q", version.Version, c.RequiredVersion)
	}
	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config) error {
	viper.Set("models_dir", cfg.ModelsDir)
	viper.Set("migrations_dir", cfg.MigrationsDir)
	viper.Set("model_format", cfg.ModelFormat)
	viper.Set("provider", cfg.Provider)
	if cfg.RequiredVersion != "" {
		viper.Set("required_version", cfg.RequiredVersion)
	}

	configFile := ".schemaplan.yaml"
	return viper.WriteConfigAs(configFile)
}
