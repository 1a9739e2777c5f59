package config

import "time"

// Config holds runtime settings for the TuParKing CLI.
//
// Fields:
//   - APIBaseURL: base URL of the backend HTTP API.
//   - RequestTimeout: per-request deadline for API calls.
//   - DatabaseDSN: path of the local sqlite database (caches + session store).
//   - StoreFilePath: path of the JSON fallback store; empty selects the
//     sqlite-backed store.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DatabaseDSN    string
	StoreFilePath  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.DatabaseDSN = "tuparking.db"
	c.StoreFilePath = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
