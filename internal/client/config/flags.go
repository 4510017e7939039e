package config

import (
	"flag"
	"os"
	"time"

	"github.com/vahire/vahire/internal/client/navigation"
	"github.com/vahire/vahire/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string         base URL of the auth backend
//	-d string         path to the local credential database
//	-po               persist the onboarding step across restarts
//	-platform string  runtime surface: web, ios, android
//	-viewport string  width class: desktop, tablet, phone
//	-i int            online check interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-po", "-platform", "-viewport", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the auth backend")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local credential database")
	fs.BoolVar(&cfg.PersistOnboarding, "po", cfg.PersistOnboarding, "persist onboarding step across restarts")
	platform := fs.String("platform", string(cfg.Platform), "runtime surface: web, ios, android")
	viewport := fs.String("viewport", string(cfg.Viewport), "width class: desktop, tablet, phone")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Platform = navigation.Platform(*platform)
	cfg.Viewport = navigation.Viewport(*viewport)
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
