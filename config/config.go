package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/currency"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	Storage StorageConfig
	Log     LogConfig
	Company CompanyConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// StorageConfig holds local persistence settings
type StorageConfig struct {
	DataDir string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// CompanyConfig holds company defaults used when seeding a fresh dataset
type CompanyConfig struct {
	Name     string
	TaxRate  float64
	Currency string
}

// Load reads configuration from config.toml (if present) and
// CLOUDBILLING_* environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("CLOUDBILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Storage: StorageConfig{
			DataDir: v.GetString("storage.data_dir"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Company: CompanyConfig{
			Name:     v.GetString("company.name"),
			TaxRate:  v.GetFloat64("company.tax_rate"),
			Currency: v.GetString("company.currency"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cloudbilling")
	v.SetDefault("app.env", "development")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("company.name", "CloudBilling Pro")
	v.SetDefault("company.tax_rate", 0.09)
	v.SetDefault("company.currency", "USD")
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir cannot be empty")
	}
	if c.Company.TaxRate < 0 || c.Company.TaxRate >= 1 {
		return fmt.Errorf("company.tax_rate must be a fraction in [0, 1)")
	}
	if _, err := currency.ParseISO(c.Company.Currency); err != nil {
		return fmt.Errorf("invalid company.currency %q: %w", c.Company.Currency, err)
	}
	return nil
}
