package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	AllowedOrigins []string

	CloudName      string
	CloudAPIKey    string
	CloudAPISecret string
	CloudBaseURL   string
	UploadFolder   string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	LocalStoragePath string
	MaxUploadBytes   int64

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ProviderTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "4000"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		AllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		CloudName:        os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudAPIKey:      os.Getenv("CLOUDINARY_API_KEY"),
		CloudAPISecret:   os.Getenv("CLOUDINARY_API_SECRET"),
		CloudBaseURL:     getEnv("CLOUDINARY_BASE_URL", "https://api.cloudinary.com/v1_1"),
		UploadFolder:     getEnv("CLOUDINARY_UPLOAD_FOLDER", "CompressX"),
		MailHost:         os.Getenv("MAIL_HOST"),
		MailPort:         getEnvInt("MAIL_PORT", 465),
		MailUser:         os.Getenv("MAIL_USER"),
		MailPass:         os.Getenv("MAIL_PASS"),
		MailFrom:         os.Getenv("MAIL_FROM"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./files"),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 100)) << 20,
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 60)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ProviderTimeout:  time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CloudName == "" || cfg.CloudAPIKey == "" || cfg.CloudAPISecret == "" {
		return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.MailUser
	}

	return cfg, nil
}

// MailEnabled reports whether outbound notifications can be delivered.
func (c *Config) MailEnabled() bool {
	return c.MailHost != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
