package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string

	// Outbound form relay
	RelayBaseURL   string
	RelayRecipient string

	// Submission rate limiting
	RateLimitStore   string // "memory" or "redis"
	RateLimitWindow  time.Duration
	MinSubmitGap     time.Duration
	MaxAttempts      int
	RedisAddr        string
	RedisPassword    string
	RedisTLS         bool

	// Lead notifications
	NotifyEmails      []string
	NotifySMSNumbers  []string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", "*"),

		RelayBaseURL:   getEnv("RELAY_BASE_URL", "https://formsubmit.co"),
		RelayRecipient: getEnv("RELAY_RECIPIENT", "sparklesavcleaning@gmail.com"),

		RateLimitStore:  strings.ToLower(strings.TrimSpace(getEnv("RATE_LIMIT_STORE", "memory"))),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Hour),
		MinSubmitGap:    getEnvAsDuration("MIN_SUBMIT_GAP", 2*time.Second),
		MaxAttempts:     getEnvAsInt("MAX_ATTEMPTS_PER_WINDOW", 5),
		RedisAddr:       getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),

		NotifyEmails:      getEnvAsList("LEAD_NOTIFY_EMAILS", "sparklesavcleaning@gmail.com"),
		NotifySMSNumbers:  getEnvAsList("LEAD_NOTIFY_SMS", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Sparkle SAV Cleaning"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated env value, dropping empty entries.
func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
