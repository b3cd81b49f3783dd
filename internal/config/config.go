package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	Provider ProviderConfig `mapstructure:"provider"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the settings for the best-effort task mirror.
// An empty URL means the service runs memory-only.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// StorageConfig contains the filesystem locations for task images.
type StorageConfig struct {
	UploadsDir   string `mapstructure:"uploads_dir"   validate:"required"`
	GeneratedDir string `mapstructure:"generated_dir" validate:"required"`
}

// ProviderConfig contains the image-generation provider settings.
// An empty API key disables the provider; every task then completes via
// the fallback simulator.
type ProviderConfig struct {
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	Model          string `mapstructure:"model"           validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// PipelineConfig contains task pipeline tuning knobs.
type PipelineConfig struct {
	// SimulatorStepDelayMs is the pause between staged progress updates in
	// the fallback simulator.
	SimulatorStepDelayMs int `mapstructure:"simulator_step_delay_ms" validate:"required,gt=0"`
}

// AuthConfig contains bearer-token authentication settings.
// An empty secret disables token auth; all requests are then anonymous.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}
