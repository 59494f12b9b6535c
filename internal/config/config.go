package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string
	DataDir  string

	UnitPrice int

	TypingDelay  time.Duration
	RevealDelay  time.Duration
	SummaryDelay time.Duration

	SessionTTL  time.Duration
	MaxSessions int

	AllowedOrigins     []string
	OutboxPollInterval time.Duration

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

func Load() (*Config, error) {
	// .env is optional; env vars may already be set in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DataDir:            getEnv("DATA_DIR", "."),
		UnitPrice:          getEnvAsInt("UNIT_PRICE", 150),
		TypingDelay:        getEnvAsDuration("TYPING_DELAY", time.Second),
		RevealDelay:        getEnvAsDuration("REVEAL_DELAY", 500*time.Millisecond),
		SummaryDelay:       getEnvAsDuration("SUMMARY_DELAY", 1500*time.Millisecond),
		SessionTTL:         getEnvAsDuration("SESSION_TTL", time.Hour),
		MaxSessions:        getEnvAsInt("MAX_SESSIONS", 10000),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "*")),
		OutboxPollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", 5*time.Second),
		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail:  os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:   getEnv("SENDGRID_FROM_NAME", "Tile Estimator"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.UnitPrice <= 0 {
		return fmt.Errorf("UNIT_PRICE must be positive, got %d", c.UnitPrice)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive, got %d", c.MaxSessions)
	}

	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"TYPING_DELAY", c.TypingDelay},
		{"REVEAL_DELAY", c.RevealDelay},
		{"SUMMARY_DELAY", c.SummaryDelay},
	} {
		if d.val < 0 {
			return fmt.Errorf("%s must not be negative, got %s", d.name, d.val)
		}
	}

	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"SESSION_TTL", c.SessionTTL},
		{"OUTBOX_POLL_INTERVAL", c.OutboxPollInterval},
	} {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.val)
		}
	}

	if c.SendGridAPIKey != "" && c.SendGridFromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL is required when SENDGRID_API_KEY is set")
	}
	return nil
}

// DBPath is where the delivery outbox lives.
func (c *Config) DBPath() string {
	return strings.TrimRight(c.DataDir, "/") + "/tilebot.db"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
