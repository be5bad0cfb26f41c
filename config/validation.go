package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is complete enough to run
// in the current environment.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, "SERVER_PORT must not be empty")
	}

	switch cfg.StorageBackend {
	case StorageSQLite:
		if cfg.SQLitePath == "" {
			errors = append(errors, "SQLITE_PATH is required for the sqlite storage backend")
		}
	case StorageRedis:
		if cfg.RedisURL == "" && (cfg.RedisHost == "" || cfg.RedisPort == "") {
			errors = append(errors, "REDIS_URL or REDIS_HOST/REDIS_PORT are required for the redis storage backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("unknown storage backend %q (expected %q or %q)", cfg.StorageBackend, StorageRedis, StorageSQLite))
	}

	// Tests run against fake gateways, so the key is only enforced for
	// real deployments.
	if cfg.LLMAPIKey == "" && !IsTest() {
		errors = append(errors, "LLM_API_KEY or LLM_API_KEY_FILE must be set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
