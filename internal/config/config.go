package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the Postgres connection string.
type DatabaseConfig struct {
	URL string
}

// JWTConfig holds token-signing settings.
type JWTConfig struct {
	Secret string
}

// StorageConfig contains credentials for the R2 bucket holding attachments.
// When Endpoint is empty, attachment upload is disabled and applications can
// only be submitted without files.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	BaseURL   string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "3000"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("R2_ENDPOINT"),
			AccessKey: os.Getenv("R2_ACCESS_KEY"),
			SecretKey: os.Getenv("R2_SECRET_KEY"),
			Bucket:    os.Getenv("R2_BUCKET_NAME"),
			BaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Database.URL == "" {
		return errors.New("DATABASE_URL must be provided")
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Storage.Endpoint != "" {
		switch {
		case c.Storage.AccessKey == "":
			return errors.New("R2_ACCESS_KEY must be provided when R2_ENDPOINT is set")
		case c.Storage.SecretKey == "":
			return errors.New("R2_SECRET_KEY must be provided when R2_ENDPOINT is set")
		case c.Storage.Bucket == "":
			return errors.New("R2_BUCKET_NAME must be provided when R2_ENDPOINT is set")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
