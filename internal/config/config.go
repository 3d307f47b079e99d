// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FrontendURL    string `mapstructure:"FRONTEND_URL"`

	MongoURI string `mapstructure:"MONGODB_URI"`
	MongoDB  string `mapstructure:"MONGODB_NAME"`
	RedisURL string `mapstructure:"REDIS_URL"`

	AccessTokenSecret  string        `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string        `mapstructure:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTL     time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL    time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	// Cookie attributes differ across deployment variants (same-site
	// dev vs cross-site hosted frontend), so they are configuration,
	// not constants.
	CookieSecure   bool   `mapstructure:"COOKIE_SECURE"`
	CookieSameSite string `mapstructure:"COOKIE_SAMESITE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	AdminEmail   string `mapstructure:"ADMIN_EMAIL"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	UploadDir string `mapstructure:"UPLOAD_DIR"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8420")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGODB_NAME", "duskblog")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ACCESS_TOKEN_SECRET", "dev-access-secret-change-in-production")
	viper.SetDefault("REFRESH_TOKEN_SECRET", "dev-refresh-secret-change-in-production")
	viper.SetDefault("ACCESS_TOKEN_TTL", 24*time.Hour)
	viper.SetDefault("REFRESH_TOKEN_TTL", 240*time.Hour)
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("COOKIE_SAMESITE", "Lax")
	viper.SetDefault("SMTP_HOST", "localhost")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("MAIL_FROM", "no-reply@duskblog.local")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("UPLOAD_DIR", "./public/uploads")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be distinct")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	switch c.CookieSameSite {
	case "Lax", "Strict", "None":
	default:
		return fmt.Errorf("COOKIE_SAMESITE must be Lax, Strict or None, got %q", c.CookieSameSite)
	}
	if c.CookieSameSite == "None" && !c.CookieSecure {
		return errors.New("COOKIE_SAMESITE=None requires COOKIE_SECURE=true")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.AccessTokenSecret == "dev-access-secret-change-in-production" ||
			c.RefreshTokenSecret == "dev-refresh-secret-change-in-production" {
			return errors.New("token secrets must be changed from the default values in production")
		}
		if len(c.AccessTokenSecret) < 32 || len(c.RefreshTokenSecret) < 32 {
			return errors.New("token secrets must be at least 32 characters in production")
		}
		if !c.CookieSecure {
			return errors.New("COOKIE_SECURE must be true in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		if len(c.AccessTokenSecret) < 32 || len(c.RefreshTokenSecret) < 32 {
			log.Println("WARNING: token secrets are shorter than 32 characters. Consider using stronger secrets for production.")
		}
	}

	return nil
}
