package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vahire/vahire/internal/client/models"
	"github.com/vahire/vahire/internal/common"
	"github.com/vahire/vahire/internal/server/auth"
	"github.com/vahire/vahire/internal/server/config"
	"github.com/vahire/vahire/internal/server/refreshtokens"
)

// Grant is what every credential-issuing operation returns: the profile plus
// a fresh token pair. It serializes to the shape the client decodes.
type Grant struct {
	User   *models.User      `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Registration is the input of Register.
type Registration struct {
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Password    string          `json:"password"`
	UserType    models.UserType `json:"user_type"`
	DisplayName string          `json:"display_name"`
}

func (s *Service) Register(ctx context.Context, reg Registration) (*Grant, error) {

	if reg.Email == "" || reg.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}
	if reg.UserType != "" && !reg.UserType.Valid() {
		return nil, fmt.Errorf("%w: unknown user type %q", common.ErrorValidation, reg.UserType)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &User{
		Email:        reg.Email,
		Phone:        reg.Phone,
		PasswordHash: hash,
		UserType:     reg.UserType,
		DisplayName:  reg.DisplayName,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return s.issueGrant(ctx, user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Grant, error) {

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	return s.issueGrant(ctx, user)
}

// Refresh rotates the refresh token: the presented token is revoked and a
// fresh pair is issued. An unknown token maps to unauthorized; a known but
// expired one is deleted and reported as expired.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {

	rt, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if time.Now().After(rt.ExpiresAt) {
		_ = s.refreshTokenRepo.Delete(ctx, rt.Token)
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repo.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.refreshTokenRepo.Delete(ctx, rt.Token); err != nil {
		return nil, common.ErrorInternal
	}

	return s.issueGrant(ctx, user)
}

// Logout revokes every refresh token of the user. Outstanding access tokens
// simply age out.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.refreshTokenRepo.DeleteByUser(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return user.Profile(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error) {

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if upd.Phone != nil {
		user.Phone = *upd.Phone
	}
	if upd.DisplayName != nil {
		user.DisplayName = *upd.DisplayName
	}
	if upd.AvatarURL != nil {
		user.AvatarURL = *upd.AvatarURL
	}

	user, err = s.repo.Update(ctx, user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return user.Profile(), nil
}

func (s *Service) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *Service) issueGrant(ctx context.Context, user *User) (*Grant, error) {

	accessToken, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.refreshTokenRepo.Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &Grant{
		User: user.Profile(),
		Tokens: &models.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int64(s.accessTokenValidityDuration.Seconds()),
		},
	}, nil
}
