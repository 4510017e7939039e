package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vahire/vahire/internal/client/models"
	"github.com/vahire/vahire/internal/common"
	"github.com/vahire/vahire/internal/server/config"
	"github.com/vahire/vahire/internal/server/refreshtokens"
)

type memUserRepo struct {
	seq   int
	users map[string]*User // by id
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *User) (*User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("u%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *User) (*User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	user.UpdatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return user, nil
}

type memTokenRepo struct {
	tokens map[string]*refreshtokens.RefreshToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]*refreshtokens.RefreshToken{}}
}

func (r *memTokenRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	r.tokens[token] = &refreshtokens.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(validity),
	}
	return nil
}

func (r *memTokenRepo) Find(ctx context.Context, token string) (*refreshtokens.RefreshToken, error) {
	rt, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rt, nil
}

func (r *memTokenRepo) Delete(ctx context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *memTokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	for k, rt := range r.tokens {
		if rt.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

func newTestService() (*Service, *memUserRepo, *memTokenRepo) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	ur := newMemUserRepo()
	tr := newMemTokenRepo()
	return NewService(ur, tr, cfg), ur, tr
}

func testRegistration() Registration {
	return Registration{
		Email:       "alice@example.com",
		Phone:       "+15550100",
		Password:    "correct horse",
		UserType:    models.UserTypeClient,
		DisplayName: "Alice",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	grant, err := s.Register(ctx, testRegistration())
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", grant.User.Email)
	require.Equal(t, models.UserTypeClient, grant.User.UserType)
	require.NotEmpty(t, grant.Tokens.AccessToken)
	require.NotEmpty(t, grant.Tokens.RefreshToken)
	require.Equal(t, int64(900), grant.Tokens.ExpiresIn)

	got, err := s.Login(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, grant.User.ID, got.User.ID)
	require.NotEqual(t, grant.Tokens.RefreshToken, got.Tokens.RefreshToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	_, err := s.Register(ctx, testRegistration())
	require.NoError(t, err)

	_, err = s.Register(ctx, testRegistration())
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestRegister_InvalidUserType(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	reg := testRegistration()
	reg.UserType = "robot"
	_, err := s.Register(ctx, reg)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestRegister_MissingFields(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	reg := testRegistration()
	reg.Password = ""
	_, err := s.Register(ctx, reg)
	require.ErrorIs(t, err, common.ErrorValidation)
	require.NotErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	_, err := s.Register(ctx, testRegistration())
	require.NoError(t, err)

	_, err = s.Login(ctx, "alice@example.com", "battery staple")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	_, err := s.Login(ctx, "nobody@example.com", "pw")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	grant, err := s.Register(ctx, testRegistration())
	require.NoError(t, err)

	next, err := s.Refresh(ctx, grant.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, grant.Tokens.RefreshToken, next.Tokens.RefreshToken)

	// the presented token is gone after rotation
	_, err = s.Refresh(ctx, grant.Tokens.RefreshToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefresh_Expired(t *testing.T) {
	ctx := context.Background()
	s, _, tr := newTestService()

	grant, err := s.Register(ctx, testRegistration())
	require.NoError(t, err)

	tr.tokens[grant.Tokens.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = s.Refresh(ctx, grant.Tokens.RefreshToken)
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	require.Empty(t, tr.tokens)
}

func TestLogout_RevokesAllTokens(t *testing.T) {
	ctx := context.Background()
	s, _, tr := newTestService()

	grant, err := s.Register(ctx, testRegistration())
	require.NoError(t, err)
	_, err = s.Login(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.Len(t, tr.tokens, 2)

	require.NoError(t, s.Logout(ctx, grant.User.ID))
	require.Empty(t, tr.tokens)

	_, err = s.Refresh(ctx, grant.Tokens.RefreshToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	grant, err := s.Register(ctx, testRegistration())
	require.NoError(t, err)

	name := "Alice B"
	avatar := "/avatars/k1"
	got, err := s.UpdateProfile(ctx, grant.User.ID, models.UserUpdate{DisplayName: &name, AvatarURL: &avatar})
	require.NoError(t, err)
	require.Equal(t, "Alice B", got.DisplayName)
	require.Equal(t, "/avatars/k1", got.AvatarURL)
	// untouched fields survive
	require.Equal(t, "+15550100", got.Phone)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	name := "Ghost"
	_, err := s.UpdateProfile(ctx, "missing", models.UserUpdate{DisplayName: &name})
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}
