package sanitizereport

import "time"

type Config struct {
	Timeout time.Duration
	// RejectInvalid fails the job with REPORT_VALIDATION_FAILED instead of
	// returning valid=false.
	RejectInvalid bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
