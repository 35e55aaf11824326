package websearch

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIKey     string
	BaseURL    string
	NumResults int
	Timeout    time.Duration
}

// LoadConfig reads the web search configuration from the environment. An
// empty EXA_API_KEY leaves the collaborator unconfigured, which downstream
// code treats as a silent no-op rather than an error.
func LoadConfig() Config {
	cfg := Config{
		APIKey:  strings.TrimSpace(os.Getenv("EXA_API_KEY")),
		BaseURL: strings.TrimSpace(os.Getenv("EXA_BASE_URL")),
	}
	if results := strings.TrimSpace(os.Getenv("EXA_NUM_RESULTS")); results != "" {
		if parsed, err := strconv.Atoi(results); err == nil && parsed > 0 {
			cfg.NumResults = parsed
		}
	}
	if timeout := strings.TrimSpace(os.Getenv("EXA_HTTP_TIMEOUT")); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			cfg.Timeout = parsed
		}
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.exa.ai"
	}
	if c.NumResults <= 0 {
		c.NumResults = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}
