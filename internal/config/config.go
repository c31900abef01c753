package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to an env var of the same name.
type Config struct {
	// IPC bridge
	IPCHost string `mapstructure:"IPC_HOST"`
	IPCPort int    `mapstructure:"IPC_PORT"`
	Env     string `mapstructure:"APP_ENV"` // development | production

	// Origin of the desktop shell allowed by CORS.
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`

	// Database
	DBPath string `mapstructure:"DB_PATH"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Audit retention
	AuditRetentionDays      int `mapstructure:"AUDIT_RETENTION_DAYS"`
	AuditPurgeIntervalHours int `mapstructure:"AUDIT_PURGE_INTERVAL_HOURS"`

	// Business
	PDFStoragePath string `mapstructure:"PDF_STORAGE_PATH"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("IPC_HOST", "127.0.0.1")
	viper.SetDefault("IPC_PORT", 8765)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("CORS_ORIGIN", "*")
	viper.SetDefault("DB_PATH", "./data/boleteria.db")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRATION_HOURS", 12)
	// 0 disables the retention cron.
	viper.SetDefault("AUDIT_RETENTION_DAYS", 365)
	viper.SetDefault("AUDIT_PURGE_INTERVAL_HOURS", 24)
	viper.SetDefault("PDF_STORAGE_PATH", "./data/cierres")
	viper.SetDefault("LOG_LEVEL", "info")

	// Optional .env file for local development, ignored when missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
