package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage backends for the persisted recipe collections.
const (
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost  string
	ServerPort  string
	CORSOrigins []string

	// Collection storage configuration
	StorageBackend string
	SQLitePath     string

	// Redis configuration (used when StorageBackend == StorageRedis)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Chat completion gateway configuration
	LLMAPIKey string
	LLMAPIURL string
	LLMModel  string
}

// LoadConfig creates a new Config instance from environment variables.
// The LLM API key may come from LLM_API_KEY or, following the Docker
// secrets convention, from the file named by LLM_API_KEY_FILE.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerHost:     getenv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getenv("SERVER_PORT", "8080"),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		StorageBackend: getenv("STORAGE_BACKEND", StorageSQLite),
		SQLitePath:     getenv("SQLITE_PATH", "fridgechef.db"),
		RedisHost:      getenv("REDIS_HOST", "localhost"),
		RedisPort:      getenv("REDIS_PORT", "6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisURL:       os.Getenv("REDIS_URL"),
		LLMAPIURL:      getenv("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		LLMModel:       getenv("LLM_MODEL", "gpt-4o"),
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", dbStr, err)
		}
		cfg.RedisDB = db
	}

	apiKey, err := loadAPIKey()
	if err != nil {
		return nil, err
	}
	cfg.LLMAPIKey = apiKey

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("LLM_API_KEY")); key != "" {
		return key, nil
	}

	keyFile := os.Getenv("LLM_API_KEY_FILE")
	if keyFile == "" {
		return "", nil
	}

	data, err := os.ReadFile(keyFile)
	if err != nil {
		return "", fmt.Errorf("failed to read API key file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("API key file %s is empty", keyFile)
	}
	return key, nil
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
