package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	BotToken        string
	BroadcastChatID int64
	PollTimeout     time.Duration

	// Ops HTTP server; empty disables it
	HTTPPort string

	// Storage
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// AMQP event publishing; empty URL disables it
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Text-to-speech
	TTSEnabled                   bool
	TTSLanguage                  string
	TTSVoice                     string
	GoogleServiceAccountJSON     string
	GoogleServiceAccountFile     string
	GoogleApplicationCredentials string

	// Sessions
	SessionTTL      time.Duration
	SessionMaxChats int

	LogLevel string
}

var (
	validBackends  = []string{"file", "sqlite", "memory"}
	validLogLevels = []string{"debug", "info", "warn", "warning", "error"}
)

func Load() *Config {
	cfg := &Config{
		BotToken:        getEnv("BOT_TOKEN", ""),
		BroadcastChatID: getEnvInt64("BROADCAST_CHAT_ID", 0),
		PollTimeout:     getEnvDuration("POLL_TIMEOUT", 30*time.Second),

		HTTPPort: getEnvAllowEmpty("HTTP_PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "file"),
		DataDir:      getEnv("DATA_DIR", "."),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "ledgerbot"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "ledger.entry.added"),

		TTSEnabled:                   getEnvBool("TTS_ENABLED", false),
		TTSLanguage:                  getEnv("TTS_LANGUAGE", "en-US"),
		TTSVoice:                     getEnv("TTS_VOICE", ""),
		GoogleServiceAccountJSON:     getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile:     getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleApplicationCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionMaxChats: getEnvInt("SESSION_MAX_CHATS", 10000),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.BotToken) == "" {
		errors = append(errors, "BOT_TOKEN is required")
	}

	if c.PollTimeout < time.Second || c.PollTimeout > 50*time.Second {
		errors = append(errors, fmt.Sprintf("invalid poll timeout %v: must be between 1 second and 50 seconds", c.PollTimeout))
	}

	// Validate port; empty disables the HTTP server
	if c.HTTPPort != "" {
		if port, err := strconv.Atoi(c.HTTPPort); err != nil {
			errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.HTTPPort))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
		}
	}

	// Validate data backend
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "file":
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	// Validate text-to-speech credentials if enabled
	if c.TTSEnabled {
		file := c.CredentialsFile()
		if c.GoogleServiceAccountJSON == "" && file == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided when TTS is enabled")
		}
		if c.GoogleServiceAccountJSON == "" && file != "" {
			if _, err := os.Stat(file); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", file))
			}
		}
		if c.TTSLanguage == "" {
			errors = append(errors, "TTS language cannot be empty when TTS is enabled")
		}
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at most 7 days", c.SessionTTL))
	}
	if c.SessionMaxChats < 1 {
		errors = append(errors, fmt.Sprintf("invalid session limit %d: must be at least 1", c.SessionMaxChats))
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// CredentialsFile is the service account file to read, if any.
func (c *Config) CredentialsFile() string {
	if c.GoogleServiceAccountFile != "" {
		return c.GoogleServiceAccountFile
	}
	return c.GoogleApplicationCredentials
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
