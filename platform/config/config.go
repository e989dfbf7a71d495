// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetPublicRateLimitPerMinute() int
}

// EmailConfig provides settings for SMTP email delivery.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for outbound patient and staff notifications.
type NotificationConfig interface {
	GetAppBaseURL() string
	GetFrontDeskEmail() string
}

// SchedulerConfig provides settings for the asynq job queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetStallSweepInterval() time.Duration
}

// RealtimeConfig provides settings for push delivery to staff dashboards.
type RealtimeConfig interface {
	GetRedisURL() string
	GetRealtimeChannel() string
	GetChangefeedChannel() string
	GetAutoPrintWindow() time.Duration
}

// IntakeConfig provides settings for patient intake links.
type IntakeConfig interface {
	GetAppBaseURL() string
}

// PhoneConfig provides the default region for phone normalisation.
type PhoneConfig interface {
	GetPhoneDefaultRegion() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	JWTAccessSecret          string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	PublicRateLimitPerMinute int
	AppBaseURL               string
	EmailEnabled             bool
	SMTPHost                 string
	SMTPPort                 int
	SMTPUsername             string
	SMTPPassword             string
	EmailFromName            string
	EmailFromAddress         string
	FrontDeskEmail           string
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	StallSweepInterval       time.Duration
	RealtimeChannel          string
	ChangefeedChannel        string
	AutoPrintWindow          time.Duration
	PhoneDefaultRegion       string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string              { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool            { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string         { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool          { return c.CORSAllowCreds }
func (c *Config) GetPublicRateLimitPerMinute() int { return c.PublicRateLimitPerMinute }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string     { return c.AppBaseURL }
func (c *Config) GetFrontDeskEmail() string { return c.FrontDeskEmail }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                  { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool            { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string            { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int             { return c.AsynqConcurrency }
func (c *Config) GetStallSweepInterval() time.Duration { return c.StallSweepInterval }

// RealtimeConfig implementation
func (c *Config) GetRealtimeChannel() string        { return c.RealtimeChannel }
func (c *Config) GetChangefeedChannel() string      { return c.ChangefeedChannel }
func (c *Config) GetAutoPrintWindow() time.Duration { return c.AutoPrintWindow }

// PhoneConfig implementation
func (c *Config) GetPhoneDefaultRegion() string { return c.PhoneDefaultRegion }

// IsRedisEnabled reports whether a Redis URL was configured.
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		PublicRateLimitPerMinute: mustInt(getEnv("PUBLIC_RATE_LIMIT_PER_MINUTE", "30")),
		AppBaseURL:               strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:5173"), "/"),
		EmailEnabled:             emailEnabled && smtpHost != "",
		SMTPHost:                 smtpHost,
		SMTPPort:                 mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:             getEnv("SMTP_USERNAME", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		EmailFromName:            getEnv("EMAIL_FROM_NAME", "Clinic Front Desk"),
		EmailFromAddress:         getEnv("EMAIL_FROM_ADDRESS", ""),
		FrontDeskEmail:           getEnv("FRONT_DESK_EMAIL", ""),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		StallSweepInterval:       mustDuration(getEnv("STALL_SWEEP_INTERVAL", "1h")),
		RealtimeChannel:          getEnv("REALTIME_CHANNEL", "staff-realtime"),
		ChangefeedChannel:        getEnv("CHANGEFEED_CHANNEL", "intake_changes"),
		AutoPrintWindow:          mustDuration(getEnv("AUTO_PRINT_WINDOW", "30s")),
		PhoneDefaultRegion:       strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "US")),
	}

	if err := cfg.validate(emailEnabled); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate(emailRequested bool) error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if emailRequested && c.SMTPHost == "" && c.Env == "production" {
		return fmt.Errorf("SMTP_HOST is required when EMAIL_ENABLED is true")
	}
	if c.EmailEnabled && c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.AutoPrintWindow <= 0 {
		return fmt.Errorf("AUTO_PRINT_WINDOW must be a positive duration")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
