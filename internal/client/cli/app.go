// Package cli implements the interactive shell of the vahire client. It
// binds the session store, navigation host, and auth backend client the way
// the mobile UI would: dispatch an operation, observe the resulting state.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vahire/vahire/internal/client/api"
	"github.com/vahire/vahire/internal/client/config"
	"github.com/vahire/vahire/internal/client/credstore"
	"github.com/vahire/vahire/internal/client/navigation"
	"github.com/vahire/vahire/internal/client/session"
	"github.com/vahire/vahire/internal/common"
	"github.com/vahire/vahire/internal/logging"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config *config.Config
	store  *session.Store
	api    api.Client
	host   *navigation.Host
	reader *bufio.Reader
	log    logging.Logger
	Mode   Mode
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := credstore.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	secret, err := loadDeviceSecret(deviceSecretPath(c.DatabasePath))
	if err != nil {
		return nil, fmt.Errorf("error loading device secret: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	creds := credstore.NewSQLiteStore(db, secret)
	apiClient := api.NewRESTClient(c.ServerBaseURL)
	store := session.New(apiClient, creds, logger, session.Options{
		PersistOnboarding: c.PersistOnboarding,
	})

	return &App{
		config: c,
		store:  store,
		api:    apiClient,
		reader: bufio.NewReader(os.Stdin),
		log:    logger,
	}, nil
}

// deviceSecretPath places the secret next to the credential database.
func deviceSecretPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "device.secret")
}

// loadDeviceSecret reads the per-install secret the credential store derives
// its encryption key from, generating one on first run.
func loadDeviceSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil && len(secret) > 0 {
		return secret, nil
	}

	secret = common.GenerateRandByteArray(32)
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, err
	}
	return secret, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		fmt.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()
	defer a.store.Close()

	a.host = navigation.NewHost(a.store, a.config.Platform, a.config.Viewport, func(tr navigation.Tree) {
		fmt.Printf("[nav] mounted %s tree\n", tr)
	})
	defer a.host.Close()

	if _, err := a.store.LoadStoredAuth(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	} else if st := a.store.Snapshot(); st.Authenticated {
		fmt.Printf("Welcome back, %s\n", st.User.DisplayName)
	}

	go a.startOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

// startOnlineStatusWatcher probes the backend periodically and reports mode
// flips on the console.
func (a *App) startOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.api.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
