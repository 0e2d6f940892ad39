// Package config loads application settings from an optional YAML file,
// environment variables and a local .env file, in ascending precedence of
// environment over file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every tunable of the application.
type Config struct {
	// ProjectID is the document store project. Empty disables the cloud
	// store; the application then runs on the local data file.
	ProjectID string `mapstructure:"project_id"`
	// CredentialsFile is the service account key used to authenticate
	// against the cloud store.
	CredentialsFile string `mapstructure:"credentials_file"`
	// DataFile is the local JSON fallback store.
	DataFile string `mapstructure:"data_file"`
	// SchedulesDir receives exported schedule files.
	SchedulesDir string `mapstructure:"schedules_dir"`
	// Workplaces are bootstrapped by the init command.
	Workplaces []string `mapstructure:"workplaces"`
	LogLevel   string   `mapstructure:"log_level"`
	LogFormat  string   `mapstructure:"log_format"`
}

// Load reads configuration. path names an explicit config file; pass "" to
// search ./configs and the working directory for config.yaml. A missing
// config file is fine, defaults and environment apply either way.
// Environment variables use the SCHEDULER_ prefix, e.g. SCHEDULER_PROJECT_ID.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetDefault("project_id", "")
	v.SetDefault("credentials_file", "firebase-credentials.json")
	v.SetDefault("data_file", "data.json")
	v.SetDefault("schedules_dir", "schedules")
	v.SetDefault("workplaces", []string{"esports_lounge", "esports_arena", "it_service_center"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetEnvPrefix("SCHEDULER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// StoreAvailable reports whether the cloud document store can be used: a
// project is configured and the credentials file exists.
func (c *Config) StoreAvailable() bool {
	if c.ProjectID == "" {
		return false
	}
	_, err := os.Stat(c.CredentialsFile)
	return err == nil
}

// loadEnvFile pulls a .env file into the environment when one is present.
// Values already set in the environment win.
func loadEnvFile() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}
