package navigation

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vahire/vahire/internal/client/api"
	"github.com/vahire/vahire/internal/client/models"
	"github.com/vahire/vahire/internal/client/session"
	"github.com/vahire/vahire/internal/logging"
)

// stubAPI satisfies api.Client with a canned successful login.
type stubAPI struct{}

func (stubAPI) Close() error { return nil }

func (stubAPI) Register(ctx context.Context, reg api.Registration) (*api.Grant, error) {
	return nil, api.ErrUnavailable
}

func (stubAPI) Login(ctx context.Context, email, password string) (*api.Grant, error) {
	return &api.Grant{
		User:   &models.User{ID: "u-1", Email: email, UserType: models.UserTypeVA},
		Tokens: &models.TokenPair{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 900},
	}, nil
}

func (stubAPI) Logout(ctx context.Context, accessToken string) error { return nil }

func (stubAPI) GetCurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	return nil, api.ErrUnauthorized
}

func (stubAPI) RefreshToken(ctx context.Context, refreshToken string) (*api.Grant, error) {
	return nil, api.ErrUnauthorized
}

func (stubAPI) UpdateProfile(ctx context.Context, accessToken string, upd models.UserUpdate) (*models.User, error) {
	return nil, api.ErrUnavailable
}

func (stubAPI) AvatarUploadURL(ctx context.Context, accessToken string) (string, string, error) {
	return "", "", api.ErrUnavailable
}

func (stubAPI) Ping(ctx context.Context) error { return nil }

// stubCreds satisfies credstore.Store in memory.
type stubCreds map[string][]byte

func (c stubCreds) Get(ctx context.Context, key string) ([]byte, error) { return c[key], nil }
func (c stubCreds) Set(ctx context.Context, key string, v []byte) error { c[key] = v; return nil }
func (c stubCreds) Delete(ctx context.Context, key string) error        { delete(c, key); return nil }

func newStore(t *testing.T) *session.Store {
	t.Helper()
	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	return session.New(stubAPI{}, stubCreds{}, log, session.Options{})
}

func TestHost_MountsInitialTree(t *testing.T) {
	s := newStore(t)

	var mounted []Tree
	h := NewHost(s, PlatformIOS, ViewportPhone, func(tr Tree) { mounted = append(mounted, tr) })
	defer h.Close()

	require.Equal(t, []Tree{TreeAuth}, mounted)
	require.Equal(t, TreeAuth, h.Tree())
}

func TestHost_ReactsToSessionChanges(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var mounted []Tree
	h := NewHost(s, PlatformAndroid, ViewportPhone, func(tr Tree) { mounted = append(mounted, tr) })
	defer h.Close()

	// guest mode opens the main tree
	s.SetGuestMode(true)
	require.Equal(t, TreeMain, h.Tree())

	// back to anonymous
	s.SetGuestMode(false)
	require.Equal(t, TreeAuth, h.Tree())

	// sign in, then finish onboarding
	_, err := s.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	require.Equal(t, TreeAuth, h.Tree()) // onboarding incomplete

	require.NoError(t, s.SetOnboardingStep(ctx, models.StepCompleted))
	require.Equal(t, TreeMain, h.Tree())

	require.Equal(t, []Tree{TreeAuth, TreeMain, TreeAuth, TreeMain}, mounted)
}

func TestHost_ReactsToViewportChanges(t *testing.T) {
	s := newStore(t)

	var mounted []Tree
	h := NewHost(s, PlatformWeb, ViewportPhone, func(tr Tree) { mounted = append(mounted, tr) })
	defer h.Close()

	require.Equal(t, TreeAuth, h.Tree())

	// resize across the desktop breakpoint
	h.SetViewport(ViewportDesktop)
	require.Equal(t, TreeMain, h.Tree())

	h.SetViewport(ViewportTablet)
	require.Equal(t, TreeAuth, h.Tree())

	require.Equal(t, []Tree{TreeAuth, TreeMain, TreeAuth}, mounted)
}

func TestHost_NoRemountOnNoopChange(t *testing.T) {
	s := newStore(t)

	var mounts int
	h := NewHost(s, PlatformIOS, ViewportPhone, func(Tree) { mounts++ })
	defer h.Close()

	// error-only state changes do not flip the tree
	s.ClearError()
	s.ClearError()
	require.Equal(t, 1, mounts)
}
