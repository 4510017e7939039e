package session

import (
	"errors"

	"github.com/vahire/vahire/internal/client/api"
	"github.com/vahire/vahire/internal/common"
)

// ErrorKind classifies a failed session operation.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindAuthentication ErrorKind = "authentication"
	KindNetwork        ErrorKind = "network"
	KindProfileFetch   ErrorKind = "profile_fetch"
	KindPersistence    ErrorKind = "persistence"
)

// ErrSuperseded is returned to the caller of an operation whose result was
// discarded because a newer session-mutating operation began before it could
// apply. The state was not touched by the superseded operation.
var ErrSuperseded = errors.New("operation superseded by a newer one")

// ErrDisposed is returned by operations invoked after Close.
var ErrDisposed = errors.New("session store disposed")

// AuthError is the failure of a session operation. Message is safe to show
// to the user and is what lands in State.Error.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

func validationError(msg string) *AuthError {
	return &AuthError{Kind: KindValidation, Message: msg}
}

// classify maps a backend client error to the session error taxonomy.
func classify(err error) *AuthError {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return &AuthError{Kind: KindAuthentication, Message: "invalid email or password", Err: err}
	case errors.Is(err, api.ErrEmailTaken):
		return &AuthError{Kind: KindAuthentication, Message: "email already registered", Err: err}
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrRefreshTokenExpired):
		return &AuthError{Kind: KindAuthentication, Message: "session expired, please sign in again", Err: err}
	case errors.Is(err, api.ErrUnavailable):
		return &AuthError{Kind: KindNetwork, Message: "cannot reach the server, try again later", Err: err}
	default:
		return &AuthError{Kind: KindNetwork, Message: "something went wrong, try again later", Err: err}
	}
}
