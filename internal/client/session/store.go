package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/vahire/vahire/internal/client/api"
	"github.com/vahire/vahire/internal/client/credstore"
	"github.com/vahire/vahire/internal/client/models"
	"github.com/vahire/vahire/internal/common"
	"github.com/vahire/vahire/internal/logging"
)

// Credential store keys. The token payload is an opaque JSON-serialized
// models.TokenPair under a single fixed key.
const (
	credTokensKey     = "auth_tokens"
	credOnboardingKey = "onboarding_step"
)

// Options configure a Store.
type Options struct {
	// PersistOnboarding writes the onboarding step to the credential store
	// and restores it in LoadStoredAuth. Off by default: a fresh process
	// re-onboards unless this is explicitly enabled.
	PersistOnboarding bool
}

// Store is the session state container. It owns the State aggregate,
// serializes all mutations, and notifies subscribers with a snapshot after
// every applied change.
//
// Session-mutating operations (Login, Register, Logout, LoadStoredAuth) hold
// a single request slot: beginning a new one invalidates any still-running
// predecessor, whose result is then discarded and reported as ErrSuperseded.
type Store struct {
	mu       sync.Mutex
	state    State
	reqID    uint64
	disposed bool

	subs      map[int]func(State)
	nextSubID int

	// credMu serializes durable credential-store mutations. Together with
	// the slot check in persistTokens/deleteCred it ensures a superseded
	// operation's write can never land after the winner's.
	credMu sync.Mutex

	api   api.Client
	creds credstore.Store
	log   logging.Logger
	opts  Options
}

// New constructs an active Store with default (anonymous) state.
func New(apiClient api.Client, creds credstore.Store, log logging.Logger, opts Options) *Store {
	return &Store{
		subs:  make(map[int]func(State)),
		api:   apiClient,
		creds: creds,
		log:   log,
		opts:  opts,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every applied mutation.
// The returned function unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close disposes the store: subscribers are dropped and subsequent
// operations fail with ErrDisposed. The backend client is not closed here;
// its lifecycle belongs to whoever constructed it.
func (s *Store) Close() {
	s.mu.Lock()
	s.disposed = true
	s.subs = make(map[int]func(State))
	s.mu.Unlock()
}

// notify must be called without the lock held.
func (s *Store) notify(snap State, fns []func(State)) {
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) collectSubsLocked() []func(State) {
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}

// begin enters the pending phase: Loading on, Error cleared, and a fresh
// request id that invalidates any in-flight predecessor.
func (s *Store) begin() (uint64, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return 0, ErrDisposed
	}
	s.reqID++
	id := s.reqID
	s.state.Loading = true
	s.state.Error = ""
	snap := s.state.clone()
	fns := s.collectSubsLocked()
	s.mu.Unlock()

	s.notify(snap, fns)
	return id, nil
}

// commit applies d if the request still holds the slot. Returns false when
// the request was superseded, in which case the state is untouched.
func (s *Store) commit(id uint64, d Delta) bool {
	s.mu.Lock()
	if id != s.reqID || s.disposed {
		s.mu.Unlock()
		return false
	}
	d.apply(&s.state)
	s.state.Loading = false
	snap := s.state.clone()
	fns := s.collectSubsLocked()
	s.mu.Unlock()

	s.notify(snap, fns)
	return true
}

// fail ends the request with an error surfaced on the aggregate. When quiet
// is set the state is left at whatever it was, minus the pending marker —
// used by LoadStoredAuth, where an unusable stored session must be
// indistinguishable in state from no stored session.
func (s *Store) fail(id uint64, aerr *AuthError, quiet bool) bool {
	s.mu.Lock()
	if id != s.reqID || s.disposed {
		s.mu.Unlock()
		return false
	}
	s.state.Loading = false
	if !quiet {
		s.state.Error = aerr.Message
	}
	snap := s.state.clone()
	fns := s.collectSubsLocked()
	s.mu.Unlock()

	s.notify(snap, fns)
	return true
}

// holdsSlot reports whether the request id still owns the operation slot.
func (s *Store) holdsSlot(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id == s.reqID && !s.disposed
}

// persistTokens writes the pair to the credential store. Called before the
// in-memory transition to authenticated: a session only becomes
// authenticated once its durable copy is confirmed. The write is gated on
// the request slot: a superseded operation gets ErrSuperseded and the
// durable pair is left to the winner.
func (s *Store) persistTokens(ctx context.Context, id uint64, tokens *models.TokenPair) error {
	b, err := json.Marshal(tokens)
	if err != nil {
		return err
	}

	s.credMu.Lock()
	defer s.credMu.Unlock()
	if !s.holdsSlot(id) {
		return ErrSuperseded
	}
	return s.creds.Set(ctx, credTokensKey, b)
}

// deleteCred removes a credential key under the same slot gate as
// persistTokens.
func (s *Store) deleteCred(ctx context.Context, id uint64, key string) error {
	s.credMu.Lock()
	defer s.credMu.Unlock()
	if !s.holdsSlot(id) {
		return ErrSuperseded
	}
	return s.creds.Delete(ctx, key)
}

// Login authenticates with the backend, persists the issued tokens, and
// transitions the session to authenticated. On failure the previous state is
// preserved except for Error and Loading.
func (s *Store) Login(ctx context.Context, email, password string) (Delta, error) {
	if email == "" || password == "" {
		return Delta{}, validationError("email and password are required")
	}

	id, err := s.begin()
	if err != nil {
		return Delta{}, err
	}

	grant, err := s.api.Login(ctx, email, password)
	if err != nil {
		aerr := classify(err)
		if !s.fail(id, aerr, false) {
			return Delta{}, ErrSuperseded
		}
		return Delta{}, aerr
	}

	return s.commitGrant(ctx, id, grant, false)
}

// Register creates an account and signs in, with the same persistence
// contract as Login. The chosen user type is seeded from the input.
func (s *Store) Register(ctx context.Context, reg api.Registration) (Delta, error) {
	switch {
	case reg.Email == "" || reg.Password == "":
		return Delta{}, validationError("email and password are required")
	case !reg.UserType.Valid():
		return Delta{}, validationError("choose whether you are hiring or assisting")
	}

	id, err := s.begin()
	if err != nil {
		return Delta{}, err
	}

	grant, err := s.api.Register(ctx, reg)
	if err != nil {
		aerr := classify(err)
		if !s.fail(id, aerr, false) {
			return Delta{}, ErrSuperseded
		}
		return Delta{}, aerr
	}

	return s.commitGrant(ctx, id, grant, false)
}

// commitGrant persists the grant's tokens and applies the authenticated
// transition. quiet controls whether a failure lands in State.Error.
func (s *Store) commitGrant(ctx context.Context, id uint64, grant *api.Grant, quiet bool) (Delta, error) {
	if grant.User == nil || grant.Tokens == nil {
		aerr := &AuthError{Kind: KindNetwork, Message: "malformed server response"}
		if !s.fail(id, aerr, quiet) {
			return Delta{}, ErrSuperseded
		}
		return Delta{}, aerr
	}

	if err := s.persistTokens(ctx, id, grant.Tokens); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return Delta{}, ErrSuperseded
		}
		aerr := &AuthError{
			Kind:    KindPersistence,
			Message: "could not save credentials on this device",
			Err:     err,
		}
		if !s.fail(id, aerr, quiet) {
			return Delta{}, ErrSuperseded
		}
		return Delta{}, aerr
	}

	d := Delta{
		User:          grant.User,
		Tokens:        grant.Tokens,
		Authenticated: ptr(true),
		GuestMode:     ptr(false),
		UserType:      ptr(grant.User.UserType),
	}
	if !s.commit(id, d) {
		return Delta{}, ErrSuperseded
	}
	return d, nil
}

// Logout revokes the session server-side (best-effort), deletes the durable
// token pair (best-effort), and resets the aggregate to its defaults. This
// is the only operation that clears UserType and onboarding progress.
func (s *Store) Logout(ctx context.Context) (Delta, error) {
	id, err := s.begin()
	if err != nil {
		return Delta{}, err
	}

	s.mu.Lock()
	var access string
	if s.state.Tokens != nil {
		access = s.state.Tokens.AccessToken
	}
	s.mu.Unlock()

	if access != "" {
		if err := s.api.Logout(ctx, access); err != nil {
			s.log.Warn(ctx, "backend logout failed", "error", err)
		}
	}
	if err := s.deleteCred(ctx, id, credTokensKey); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return Delta{}, ErrSuperseded
		}
		s.log.Warn(ctx, "failed to delete stored tokens", "error", err)
	}
	if s.opts.PersistOnboarding {
		if err := s.deleteCred(ctx, id, credOnboardingKey); err != nil {
			if errors.Is(err, ErrSuperseded) {
				return Delta{}, ErrSuperseded
			}
			s.log.Warn(ctx, "failed to delete stored onboarding step", "error", err)
		}
	}

	d := Delta{Reset: true}
	if !s.commit(id, d) {
		return Delta{}, ErrSuperseded
	}
	return d, nil
}

// LoadStoredAuth restores a session from the credential store. Invoked once
// at startup. With no stored pair the state stays at defaults and the
// returned Delta is empty. An expired access token is refreshed (and the
// rotated pair persisted) before giving up. When the stored pair is
// unusable, the state also stays at defaults and a profile-fetch error is
// returned for the caller to log.
func (s *Store) LoadStoredAuth(ctx context.Context) (Delta, error) {
	id, err := s.begin()
	if err != nil {
		return Delta{}, err
	}

	tokens := s.readStoredTokens(ctx)
	if tokens == nil {
		if !s.commit(id, Delta{}) {
			return Delta{}, ErrSuperseded
		}
		return Delta{}, nil
	}

	grant, err := s.fetchProfile(ctx, id, tokens)
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			return Delta{}, ErrSuperseded
		}
		if errors.Is(err, errPersistRefreshed) {
			aerr := &AuthError{
				Kind:    KindPersistence,
				Message: "could not save refreshed credentials",
				Err:     err,
			}
			if !s.fail(id, aerr, true) {
				return Delta{}, ErrSuperseded
			}
			return Delta{}, aerr
		}

		aerr := &AuthError{
			Kind:    KindProfileFetch,
			Message: "could not restore the previous session",
			Err:     err,
		}
		if !s.fail(id, aerr, true) {
			return Delta{}, ErrSuperseded
		}
		return Delta{}, aerr
	}

	d := Delta{
		User:          grant.User,
		Tokens:        grant.Tokens,
		Authenticated: ptr(true),
		UserType:      ptr(grant.User.UserType),
	}
	if step := s.readStoredOnboarding(ctx); step != nil {
		d.OnboardingStep = step
	}

	if !s.commit(id, d) {
		return Delta{}, ErrSuperseded
	}
	return d, nil
}

// readStoredTokens reads and decodes the durable pair. Any read or decode
// failure is treated as absence.
func (s *Store) readStoredTokens(ctx context.Context) *models.TokenPair {
	raw, err := s.creds.Get(ctx, credTokensKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read stored tokens, treating as absent", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var tokens models.TokenPair
	if err := json.Unmarshal(raw, &tokens); err != nil {
		s.log.Warn(ctx, "stored tokens are corrupt, treating as absent", "error", err)
		return nil
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return nil
	}
	return &tokens
}

var errPersistRefreshed = errors.New("failed to persist refreshed tokens")

// fetchProfile fetches the profile for the stored pair, refreshing once on
// an expired access token. The rotated pair must persist before it is used.
func (s *Store) fetchProfile(ctx context.Context, id uint64, tokens *models.TokenPair) (*api.Grant, error) {
	user, err := s.api.GetCurrentUser(ctx, tokens.AccessToken)
	if err == nil {
		return &api.Grant{User: user, Tokens: tokens}, nil
	}
	if !errors.Is(err, common.ErrTokenExpired) {
		return nil, err
	}

	grant, err := s.api.RefreshToken(ctx, tokens.RefreshToken)
	if err != nil {
		return nil, err
	}
	if grant.User == nil || grant.Tokens == nil {
		return nil, errors.New("malformed refresh response")
	}
	if err := s.persistTokens(ctx, id, grant.Tokens); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errPersistRefreshed, err)
	}
	return grant, nil
}

func (s *Store) readStoredOnboarding(ctx context.Context) *models.OnboardingStep {
	if !s.opts.PersistOnboarding {
		return nil
	}
	raw, err := s.creds.Get(ctx, credOnboardingKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read stored onboarding step", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}
	step := models.OnboardingStep(raw)
	if !step.Valid() {
		return nil
	}
	return &step
}

// SetGuestMode toggles guest browsing independently of authentication.
func (s *Store) SetGuestMode(enabled bool) {
	_ = s.applySync(Delta{GuestMode: ptr(enabled)})
}

// ClearError resets the display error. The UI clears a shown error before
// the next attempt.
func (s *Store) ClearError() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.state.Error = ""
	snap := s.state.clone()
	fns := s.collectSubsLocked()
	s.mu.Unlock()

	s.notify(snap, fns)
}

// applySync applies a delta outside the request slot: synchronous setters
// have no pending phase and cannot be superseded.
func (s *Store) applySync(d Delta) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	d.apply(&s.state)
	snap := s.state.clone()
	fns := s.collectSubsLocked()
	s.mu.Unlock()

	s.notify(snap, fns)
	return nil
}
