package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileFlag is the command-line flag that overrides storage.file
const FileFlag = "file"

// EnvPrefix namespaces every environment variable the registrar reads
const EnvPrefix = "REGISTRAR"

// Config holds all configuration for the application
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// StorageConfig holds roster file configuration
type StorageConfig struct {
	File string `mapstructure:"file"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

// Load loads configuration from defaults, an optional registrar.yaml,
// environment variables and the --file flag, in increasing precedence.
// flags may be nil.
func Load(fs afero.Fs, flags *pflag.FlagSet) (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName("registrar")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if f := flags.Lookup(FileFlag); f != nil {
			if err := v.BindPFlag("storage.file", f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s flag: %w", FileFlag, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Registrar")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	// Storage defaults
	v.SetDefault("storage.file", "Enrollments.json")

	// Logger defaults
	v.SetDefault("logger.level", "error")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.filename", "registrar.log")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile", "registrar.prom")
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "REGISTRAR_APP_NAME")
	v.BindEnv("app.version", "REGISTRAR_APP_VERSION")
	v.BindEnv("app.environment", "REGISTRAR_APP_ENVIRONMENT")

	// Storage
	v.BindEnv("storage.file", "REGISTRAR_STORAGE_FILE")

	// Logger
	v.BindEnv("logger.level", "REGISTRAR_LOG_LEVEL")
	v.BindEnv("logger.format", "REGISTRAR_LOG_FORMAT")
	v.BindEnv("logger.output", "REGISTRAR_LOG_OUTPUT")
	v.BindEnv("logger.filename", "REGISTRAR_LOG_FILENAME")

	// Metrics
	v.BindEnv("metrics.enabled", "REGISTRAR_METRICS_ENABLED")
	v.BindEnv("metrics.textfile", "REGISTRAR_METRICS_TEXTFILE")
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Storage.File) == "" {
		return fmt.Errorf("storage file is required")
	}

	switch cfg.Logger.Output {
	case "stdout", "stderr":
	case "file":
		if cfg.Logger.Filename == "" {
			return fmt.Errorf("logger filename is required when output is file")
		}
	default:
		return fmt.Errorf("logger output must be stdout, stderr or file, got %q", cfg.Logger.Output)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Textfile == "" {
		return fmt.Errorf("metrics textfile is required when metrics are enabled")
	}

	return nil
}
