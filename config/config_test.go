package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Name: "cloudbilling", Env: "development"},
		Storage: StorageConfig{DataDir: "./data"},
		Log:     LogConfig{Level: "info", Format: "console", Output: "stdout"},
		Company: CompanyConfig{Name: "CloudBilling Pro", TaxRate: 0.09, Currency: "USD"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cloudbilling", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, "CloudBilling Pro", cfg.Company.Name)
	assert.InDelta(t, 0.09, cfg.Company.TaxRate, 1e-9)
	assert.Equal(t, "USD", cfg.Company.Currency)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "yaml" },
			wantErr: "invalid log format",
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.Storage.DataDir = "" },
			wantErr: "data_dir",
		},
		{
			name:    "negative tax rate",
			mutate:  func(c *Config) { c.Company.TaxRate = -0.1 },
			wantErr: "tax_rate",
		},
		{
			name:    "tax rate not a fraction",
			mutate:  func(c *Config) { c.Company.TaxRate = 1.5 },
			wantErr: "tax_rate",
		},
		{
			name:    "unknown currency",
			mutate:  func(c *Config) { c.Company.Currency = "ZZZ" },
			wantErr: "currency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
