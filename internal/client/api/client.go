// Package api defines the auth backend contract the client depends on and
// its REST implementation.
package api

import (
	"context"

	"github.com/vahire/vahire/internal/client/models"
)

// Grant is the payload of every credential-issuing call: the account profile
// together with a fresh token pair.
type Grant struct {
	User   *models.User      `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

// Registration is the input of Register.
type Registration struct {
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Password    string          `json:"password"`
	UserType    models.UserType `json:"user_type"`
	DisplayName string          `json:"display_name"`
}

// Client is the auth backend as seen by the session store.
//
// Contract:
//   - Login/Register: authenticate or create an account; return a Grant.
//   - Logout: revoke the refresh token behind the access token; best-effort
//     from the caller's point of view.
//   - GetCurrentUser: fetch the profile for an access token.
//   - RefreshToken: rotate the refresh token, returning a new Grant.
//   - UpdateProfile: patch mutable profile fields.
//   - AvatarUploadURL: obtain a presigned PUT URL for an avatar object.
//   - Ping: liveness probe.
//
// Calls are safe to retry at the caller's discretion; the client itself never
// retries. All methods honor context cancellation.
type Client interface {
	Close() error
	Register(ctx context.Context, reg Registration) (*Grant, error)
	Login(ctx context.Context, email, password string) (*Grant, error)
	Logout(ctx context.Context, accessToken string) error
	GetCurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*Grant, error)
	UpdateProfile(ctx context.Context, accessToken string, upd models.UserUpdate) (*models.User, error)
	AvatarUploadURL(ctx context.Context, accessToken string) (key string, url string, err error)
	Ping(ctx context.Context) error
}
