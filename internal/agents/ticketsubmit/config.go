package ticketsubmit

import "time"

type Config struct {
	MaxAttempts int
	BackoffUnit time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		BackoffUnit: time.Second,
	}
}
