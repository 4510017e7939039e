// Package httpapi exposes the auth backend over JSON HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vahire/vahire/internal/client/models"
	"github.com/vahire/vahire/internal/logging"
	"github.com/vahire/vahire/internal/server/users"
)

const shutdownTimeout = 5 * time.Second

// UserService is the slice of the users service the transport needs.
type UserService interface {
	Register(ctx context.Context, reg users.Registration) (*users.Grant, error)
	Login(ctx context.Context, email, password string) (*users.Grant, error)
	Refresh(ctx context.Context, refreshToken string) (*users.Grant, error)
	Logout(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error)
}

// AvatarService issues presigned upload URLs.
type AvatarService interface {
	GetPresignedPutUrl(ctx context.Context, userID string) (key string, url string, err error)
}

type Server struct {
	addr      string
	logger    logging.Logger
	users     UserService
	avatars   AvatarService
	jwtSecret []byte
}

func NewServer(addr string, logger logging.Logger, users UserService, avatars AvatarService, secretKey string) *Server {
	return &Server{
		addr:      addr,
		logger:    logger,
		users:     users,
		avatars:   avatars,
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the route table. Split out of Run so tests can drive the
// handlers through httptest.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/users/me", s.handleGetMe).Methods(http.MethodGet)
	authed.HandleFunc("/users/me", s.handleUpdateMe).Methods(http.MethodPatch)
	authed.HandleFunc("/users/me/avatar-upload", s.handleAvatarUpload).Methods(http.MethodPost)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
