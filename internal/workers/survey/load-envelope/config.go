package loadenvelope

import "time"

type Config struct {
	Timeout time.Duration
	// RequireEnvelope fails the job with ENVELOPE_NOT_FOUND instead of
	// returning found=false.
	RequireEnvelope bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
