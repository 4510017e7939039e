package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vahire/vahire/internal/client/models"
	"github.com/vahire/vahire/internal/common"
)

const requestTimeout = 12 * time.Second

// RESTClient talks JSON over HTTP to the vahire auth backend.
type RESTClient struct {
	baseURL string
	http    *http.Client
}

// NewRESTClient binds a client to the given base URL, e.g.
// "http://127.0.0.1:8080".
func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// errorBody is the JSON error shape the server produces.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// do performs a single JSON request/response cycle. A non-empty accessToken
// is attached as a bearer credential. Status codes are mapped to the package
// sentinel errors so callers can match with errors.Is.
func (c *RESTClient) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)

	switch {
	case resp.StatusCode == http.StatusUnauthorized && eb.Code == common.TokenExpiredCode:
		return common.ErrTokenExpired
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusConflict:
		return ErrEmailTaken
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, eb.Error)
	default:
		if eb.Error == "" {
			eb.Error = resp.Status
		}
		return fmt.Errorf("request failed: %s", eb.Error)
	}
}

func (c *RESTClient) Register(ctx context.Context, reg Registration) (*Grant, error) {
	var g Grant
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", "", reg, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *RESTClient) Login(ctx context.Context, email, password string) (*Grant, error) {
	var g Grant
	req := loginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *RESTClient) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil)
}

func (c *RESTClient) GetCurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", accessToken, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (c *RESTClient) RefreshToken(ctx context.Context, refreshToken string) (*Grant, error) {
	var g Grant
	req := refreshRequest{RefreshToken: refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", "", req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *RESTClient) UpdateProfile(ctx context.Context, accessToken string, upd models.UserUpdate) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPatch, "/api/v1/users/me", accessToken, upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type avatarUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (c *RESTClient) AvatarUploadURL(ctx context.Context, accessToken string) (string, string, error) {
	var resp avatarUploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/users/me/avatar-upload", accessToken, nil, &resp); err != nil {
		return "", "", err
	}
	return resp.Key, resp.URL, nil
}

func (c *RESTClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *RESTClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
