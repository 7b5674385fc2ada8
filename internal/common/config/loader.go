// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SERVICENOW_INSTANCE
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or any parent holding go.mod.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig applies well-known environment variables for values still
// empty after expansion. SN_* names match what the ticketing integration uses
// in its own documentation.
func overrideEmptyConfig(cfg *Config) {
	if cfg.ServiceNow.Instance == "" {
		if val := os.Getenv("SN_INSTANCE"); val != "" {
			cfg.ServiceNow.Instance = val
		}
	}
	if cfg.ServiceNow.Username == "" {
		if val := os.Getenv("SN_USER"); val != "" {
			cfg.ServiceNow.Username = val
		}
	}
	if cfg.ServiceNow.Password == "" {
		if val := os.Getenv("SN_PASS"); val != "" {
			cfg.ServiceNow.Password = val
		}
	}

	if cfg.APIs.GenAI.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.APIs.GenAI.APIKey = val
		}
	}

	if cfg.APIs.WebSearch.APIKey == "" {
		if val := os.Getenv("WEB_SEARCH_API_KEY"); val != "" {
			cfg.APIs.WebSearch.APIKey = val
		}
	}
	if cfg.APIs.WebSearch.EngineID == "" {
		if val := os.Getenv("WEB_SEARCH_ENGINE_ID"); val != "" {
			cfg.APIs.WebSearch.EngineID = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "helpdesk-assistant"
	}

	if cfg.ServiceNow.Timeout == 0 {
		cfg.ServiceNow.Timeout = 15000
	}

	if cfg.APIs.GenAI.Timeout == 0 {
		cfg.APIs.GenAI.Timeout = 60000
	}
	if cfg.APIs.GenAI.MaxTokens == 0 {
		cfg.APIs.GenAI.MaxTokens = 1024
	}
	if cfg.APIs.WebSearch.Timeout == 0 {
		cfg.APIs.WebSearch.Timeout = 10000
	}

	if cfg.Knowledge.Index == "" {
		cfg.Knowledge.Index = "knowledge-articles"
	}
	if cfg.Knowledge.MaxResults == 0 {
		cfg.Knowledge.MaxResults = 3
	}
	if cfg.Knowledge.CacheTTL == 0 {
		cfg.Knowledge.CacheTTL = 300000
	}

	if cfg.Routing.Mode == "" {
		cfg.Routing.Mode = "delegated"
	}
	if cfg.Extraction.Mode == "" {
		cfg.Extraction.Mode = "delegated"
	}

	if cfg.Ticketing.Caller == "" {
		cfg.Ticketing.Caller = "helpdesk.assistant"
	}

	if cfg.Sessions.Store == "" {
		cfg.Sessions.Store = "memory"
	}
	if cfg.Sessions.TTL == 0 {
		cfg.Sessions.TTL = 1800000
	}

	if cfg.Notifications.SMS.UrgencyThreshold == "" {
		cfg.Notifications.SMS.UrgencyThreshold = "1"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields. ServiceNow
// credentials are deliberately not required here: a missing credential set is
// a per-submission error, not a startup error.
func validateConfig(cfg *Config) error {
	switch cfg.Routing.Mode {
	case "rules", "delegated":
	default:
		return fmt.Errorf("routing.mode must be \"rules\" or \"delegated\", got %q", cfg.Routing.Mode)
	}

	switch cfg.Extraction.Mode {
	case "rules", "delegated":
	default:
		return fmt.Errorf("extraction.mode must be \"rules\" or \"delegated\", got %q", cfg.Extraction.Mode)
	}

	switch cfg.Sessions.Store {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when sessions.store is redis")
		}
	default:
		return fmt.Errorf("sessions.store must be \"memory\" or \"redis\", got %q", cfg.Sessions.Store)
	}

	if (cfg.Routing.Mode == "delegated" || cfg.Extraction.Mode == "delegated") && cfg.APIs.GenAI.BaseURL == "" {
		return fmt.Errorf("apis.genai.base_url is required for delegated routing or extraction")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
