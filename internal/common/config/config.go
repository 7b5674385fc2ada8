// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	ServiceNow    ServiceNowConfig   `mapstructure:"servicenow"`
	APIs          APIsConfig         `mapstructure:"apis"`
	Knowledge     KnowledgeConfig    `mapstructure:"knowledge"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Routing       RoutingConfig      `mapstructure:"routing"`
	Extraction    ExtractionConfig   `mapstructure:"extraction"`
	Ticketing     TicketingConfig    `mapstructure:"ticketing"`
	Sessions      SessionConfig      `mapstructure:"sessions"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServiceNowConfig holds the external ticketing endpoint credentials. All three
// fields must be present for ticket submission; their absence is reported at
// submission time, not at load time.
type ServiceNowConfig struct {
	Instance string `mapstructure:"instance"` // instance identifier, no protocol
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// Configured reports whether all required ticketing credentials are present.
func (s ServiceNowConfig) Configured() bool {
	return s.Instance != "" && s.Username != "" && s.Password != ""
}

// BaseURL returns the incident table API endpoint for the instance.
func (s ServiceNowConfig) BaseURL() string {
	return fmt.Sprintf("https://%s.service-now.com/api/now/table/incident", s.Instance)
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI     GenAIConfig     `mapstructure:"genai"`
	WebSearch WebSearchConfig `mapstructure:"web_search"`
}

// GenAIConfig holds settings for the delegated reasoning endpoint.
type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// WebSearchConfig holds settings for the web search API.
type WebSearchConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	EngineID string `mapstructure:"engine_id"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// KnowledgeConfig holds settings for the internal knowledge lookup.
type KnowledgeConfig struct {
	Index      string `mapstructure:"index"`
	MaxResults int    `mapstructure:"max_results"`
	CacheTTL   int    `mapstructure:"cache_ttl"` // milliseconds
}

type DatabaseConfig struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RoutingConfig selects the intent classification strategy.
type RoutingConfig struct {
	Mode string `mapstructure:"mode"` // "rules" or "delegated"
}

// ExtractionConfig selects the ticket-details extraction strategy.
type ExtractionConfig struct {
	Mode string `mapstructure:"mode"` // "rules" or "delegated"
}

// TicketingConfig holds defaults stamped onto every created incident.
type TicketingConfig struct {
	Caller          string `mapstructure:"caller"`
	AssignmentGroup string `mapstructure:"assignment_group"`
	Category        string `mapstructure:"category"`
}

// SessionConfig holds settings for the conversation session store.
type SessionConfig struct {
	Store string `mapstructure:"store"` // "memory" or "redis"
	TTL   int    `mapstructure:"ttl"`   // milliseconds, redis store only
}

// NotificationConfig holds settings for post-submission notifications.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		Recipient string `mapstructure:"recipient"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled          bool   `mapstructure:"enabled"`
		UrgencyThreshold string `mapstructure:"urgency_threshold"`
		Recipient        string `mapstructure:"recipient"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// MetricsConfig holds settings for the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
