package notify

import "time"

type Config struct {
	EmailEnabled     bool
	SMSEnabled       bool
	FromEmail        string
	UrgencyThreshold string
	Timeout          time.Duration
}

func LoadConfig() *Config {
	return &Config{
		UrgencyThreshold: "1",
		Timeout:          10 * time.Second,
	}
}
