// Package session implements the authoritative in-memory record of who the
// user is: authentication, guest mode, onboarding progress, and the current
// profile. All mutations go through the Store; everything else in the app
// reads snapshots.
package session

import "github.com/vahire/vahire/internal/client/models"

// State is the session aggregate.
//
// Invariants (enforced by the Store):
//   - Authenticated implies User != nil and Tokens != nil.
//   - ProfileComplete iff OnboardingStep == models.StepCompleted.
//   - UserType, once set, is cleared only by a full reset (logout).
type State struct {
	User            *models.User
	Tokens          *models.TokenPair
	Authenticated   bool
	GuestMode       bool
	Loading         bool
	Error           string
	UserType        models.UserType
	OnboardingStep  models.OnboardingStep
	ProfileComplete bool
}

// clone returns a deep copy safe to hand to subscribers.
func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Tokens != nil {
		t := *s.Tokens
		out.Tokens = &t
	}
	return out
}

// Delta is the tagged state change produced by an operation. Nil fields are
// untouched; Reset replaces the whole aggregate with its defaults before the
// remaining fields apply.
type Delta struct {
	Reset          bool
	User           *models.User
	Tokens         *models.TokenPair
	Authenticated  *bool
	GuestMode      *bool
	UserType       *models.UserType
	OnboardingStep *models.OnboardingStep
}

// apply merges the delta into s. ProfileComplete is always derived from the
// onboarding step, never set directly.
func (d Delta) apply(s *State) {
	if d.Reset {
		*s = State{}
	}
	if d.User != nil {
		u := *d.User
		s.User = &u
	}
	if d.Tokens != nil {
		t := *d.Tokens
		s.Tokens = &t
	}
	if d.Authenticated != nil {
		s.Authenticated = *d.Authenticated
	}
	if d.GuestMode != nil {
		s.GuestMode = *d.GuestMode
	}
	if d.UserType != nil {
		s.UserType = *d.UserType
	}
	if d.OnboardingStep != nil {
		s.OnboardingStep = *d.OnboardingStep
		s.ProfileComplete = *d.OnboardingStep == models.StepCompleted
	}
}

func ptr[T any](v T) *T { return &v }
