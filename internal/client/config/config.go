package config

import (
	"time"

	"github.com/vahire/vahire/internal/client/navigation"
)

// Config holds runtime settings for the vahire client.
//
// Fields:
//   - ServerBaseURL: base URL of the auth backend, e.g. "http://127.0.0.1:8080".
//   - DatabasePath: sqlite file backing the credential store.
//   - PersistOnboarding: restore the onboarding step across restarts.
//   - Platform / Viewport: the surface the client presents as; the
//     navigation layer gates on these.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	ServerBaseURL       string
	DatabasePath        string
	PersistOnboarding   bool
	Platform            navigation.Platform
	Viewport            navigation.Viewport
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "vahire.db"
	c.PersistOnboarding = false
	c.Platform = navigation.PlatformIOS
	c.Viewport = navigation.ViewportPhone
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
