package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Port           string `env:"PORT" env-default:""`
	Environment    string `env:"ENVIRONMENT" env-default:""`
	StorageURL     string `env:"STORAGE_URL" env-default:""`
	JWTSecret      string `env:"JWT_SECRET" env-default:""`
	APIKeySHA256   string `env:"API_KEY_SHA256" env-default:""`
	RateLimitRPM   int    `env:"RATE_LIMIT_RPM" env-default:"0"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"0"`
}

// WithEnv applies environment variable overrides.
//
// Recognized variables:
//
//	PORT             Server port (default: "8080")
//	ENVIRONMENT      Runtime environment (default: "development")
//	STORAGE_URL      Storage connection string (see ServerConfig.StorageURL)
//	JWT_SECRET       HMAC secret for bearer-token auth (empty: header auth)
//	API_KEY_SHA256   sha256 hex of the accepted API key (empty: disabled)
//	RATE_LIMIT_RPM   Requests per minute per client IP
//	MAX_UPLOAD_BYTES Request body size cap
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.StorageURL != "" {
			c.StorageURL = env.StorageURL
		}
		if env.JWTSecret != "" {
			c.JWTSecret = env.JWTSecret
		}
		if env.APIKeySHA256 != "" {
			c.APIKeySHA256 = env.APIKeySHA256
		}
		if env.RateLimitRPM > 0 {
			c.RateLimitRPM = env.RateLimitRPM
		}
		if env.MaxUploadBytes > 0 {
			c.MaxUploadBytes = env.MaxUploadBytes
		}
		return nil
	}
}

// WithDotEnv loads a .env file before reading the environment. A missing
// file is not an error.
func WithDotEnv(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			path = ".env"
		}
		_ = godotenv.Load(path)
		return WithEnv()(c)
	}
}
