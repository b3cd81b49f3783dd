package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values. Returns a populated Config or an error if
// loading or validation fails.
func Load() (*Config, error) {
	return load("")
}

// LoadFromFile is Load with an explicit config file path, used by tests.
func LoadFromFile(configPath string) (*Config, error) {
	return load(configPath)
}

func load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults keep the service runnable with nothing but an API key set.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("storage.uploads_dir", "data/uploads")
	v.SetDefault("storage.generated_dir", "data/generated")
	v.SetDefault("provider.model", "gemini-2.0-flash-exp")
	v.SetDefault("provider.timeout_seconds", 120)
	v.SetDefault("pipeline.simulator_step_delay_ms", 800)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a present but unreadable or
		// malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STYLEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind critical environment variables. AutomaticEnv alone
	// does not surface keys that are absent from both defaults and file.
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"server.port", "STYLEFORGE_SERVER_PORT"},
		{"server.log_level", "STYLEFORGE_SERVER_LOG_LEVEL"},
		{"database.url", "STYLEFORGE_DATABASE_URL"},
		{"storage.uploads_dir", "STYLEFORGE_STORAGE_UPLOADS_DIR"},
		{"storage.generated_dir", "STYLEFORGE_STORAGE_GENERATED_DIR"},
		{"provider.gemini_api_key", "STYLEFORGE_PROVIDER_GEMINI_API_KEY"},
		{"provider.model", "STYLEFORGE_PROVIDER_MODEL"},
		{"provider.timeout_seconds", "STYLEFORGE_PROVIDER_TIMEOUT_SECONDS"},
		{"pipeline.simulator_step_delay_ms", "STYLEFORGE_PIPELINE_SIMULATOR_STEP_DELAY_MS"},
		{"auth.jwt_secret", "STYLEFORGE_AUTH_JWT_SECRET"},
	}

	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
