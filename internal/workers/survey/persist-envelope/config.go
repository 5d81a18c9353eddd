package persistenvelope

import "time"

type Config struct {
	Timeout time.Duration
	// RequireStored fails the job with STORAGE_FAILED when the envelope
	// cannot be read back after saving.
	RequireStored bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       15 * time.Second,
		RequireStored: true,
	}
}
