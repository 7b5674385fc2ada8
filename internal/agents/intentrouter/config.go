package intentrouter

import "time"

const (
	ModeRules     = "rules"
	ModeDelegated = "delegated"
)

type Config struct {
	Mode    string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Mode:    ModeDelegated,
		Timeout: 30 * time.Second,
	}
}
