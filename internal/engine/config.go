package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	BaseURL              string        // web front end origin, e.g. https://www.youtube.com
	ConsentURL           string        // cookie-consent form target
	Retry                RetryConfig   // continuation request retry policy
	BatchSleep           time.Duration // pause after every processed response batch
	MaxToolComments      int           // hard cap for the MCP tool
	MaxToolTextRunes     int           // comment text cap in MCP tool output, 0 = no cap
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	// Transport is the round tripper sessions send through; nil keeps the
	// HTTP client's default transport.
	Transport http.RoundTripper
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		BaseURL:              "https://www.youtube.com",
		ConsentURL:           "https://consent.youtube.com/save",
		Retry:                DefaultRetryConfig,
		BatchSleep:           100 * time.Millisecond,
		MaxToolComments:      500,
		MaxToolTextRunes:     2000,
		CacheMaxEntries:      1000,
		CacheCleanupInterval: 5 * time.Minute,
	}
}

var cfg = DefaultConfig()

// Cfg exposes the engine configuration for sub-packages (sources, commentserver).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
