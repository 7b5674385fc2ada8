package knowledgesearch

import "time"

type Config struct {
	Index      string
	MaxResults int
	CacheTTL   time.Duration
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Index:      "knowledge-articles",
		MaxResults: 3,
		CacheTTL:   5 * time.Minute,
		Timeout:    10 * time.Second,
	}
}
