package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/vahire/vahire/internal/client/navigation"
	"github.com/vahire/vahire/internal/flagx"
	"github.com/vahire/vahire/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be given either as strings like "3s" or as
// integer nanoseconds. Values are copied into the runtime Config afterwards.
type JsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	DatabasePath        string         `json:"database_path"`
	PersistOnboarding   *bool          `json:"persist_onboarding"`
	Platform            string         `json:"platform"`
	Viewport            string         `json:"viewport"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; with no flag, nothing is loaded.
// Read or unmarshal errors panic (caller may recover if desired). Absent
// fields keep their current values. Intended order: defaults -> parseJson ->
// parseFlags, later stages overriding earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PersistOnboarding != nil {
		cfg.PersistOnboarding = *jc.PersistOnboarding
	}
	if jc.Platform != "" {
		cfg.Platform = navigation.Platform(jc.Platform)
	}
	if jc.Viewport != "" {
		cfg.Viewport = navigation.Viewport(jc.Viewport)
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
}
