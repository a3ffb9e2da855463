package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port           string
	LogLevel       string
	ArtifactSource string
	ArtifactPath   string
	ArtifactName   string
	DBConn         string
	JWTSecret      string
	SessionTTL     time.Duration
	SweepSchedule  string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SenderEmail    string
	NotifyEnabled  bool
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory is applied first when present; real environment wins.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		ArtifactSource: getEnv("ARTIFACT_SOURCE", SourceFile),
		ArtifactPath:   getEnv("ARTIFACT_PATH", "artifacts/loan_model.json"),
		ArtifactName:   getEnv("ARTIFACT_NAME", "loan-approval"),
		DBConn:         getEnv("DB_CONN", ""),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		SweepSchedule:  getEnv("SESSION_SWEEP_SCHEDULE", "@every 1m"),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	cfg.SessionTTL = ttl

	notify, err := strconv.ParseBool(getEnv("NOTIFY_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_ENABLED: %w", err)
	}
	cfg.NotifyEnabled = notify

	switch cfg.ArtifactSource {
	case SourceFile:
		if cfg.ArtifactPath == "" {
			return nil, fmt.Errorf("ARTIFACT_PATH is required")
		}
	case SourcePostgres:
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required")
		}
		if cfg.ArtifactName == "" {
			return nil, fmt.Errorf("ARTIFACT_NAME is required")
		}
	default:
		return nil, fmt.Errorf("ARTIFACT_SOURCE must be %q or %q, got %q", SourceFile, SourcePostgres, cfg.ArtifactSource)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SweepSchedule == "" {
		return nil, fmt.Errorf("SESSION_SWEEP_SCHEDULE is required")
	}
	if cfg.NotifyEnabled {
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required when NOTIFY_ENABLED is set")
		}
		if cfg.SenderEmail == "" {
			return nil, fmt.Errorf("SENDER_EMAIL is required when NOTIFY_ENABLED is set")
		}
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
