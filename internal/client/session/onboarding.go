package session

import (
	"context"

	"github.com/vahire/vahire/internal/client/models"
)

// The onboarding sub-state walks an ordered path:
//
//	(undetermined) -> user-type -> profile-setup -> completed
//
// Login and Register seed the user type but never advance the step; the
// onboarding screens drive it through the setters below. The terminal step
// is idempotent, and nothing here times out or rolls back: an interrupted
// run keeps whatever step was last committed.

// SetUserType records which side of the marketplace the user is on. It does
// not change the onboarding step.
func (s *Store) SetUserType(t models.UserType) error {
	if !t.Valid() {
		return validationError("unknown user type")
	}
	return s.applySync(Delta{UserType: ptr(t)})
}

// SetOnboardingStep moves the onboarding machine directly to step.
// ProfileComplete is derived: true exactly when the step is completed.
func (s *Store) SetOnboardingStep(ctx context.Context, step models.OnboardingStep) error {
	if !step.Valid() {
		return validationError("unknown onboarding step")
	}
	if err := s.applySync(Delta{OnboardingStep: ptr(step)}); err != nil {
		return err
	}
	s.persistOnboarding(ctx, step)
	return nil
}

// UpdateUserProfile merges the partial update into the current user and,
// when step is non-nil, advances the onboarding machine with the same
// derivation as SetOnboardingStep. The merge is a no-op while no user is
// loaded; the step still applies.
func (s *Store) UpdateUserProfile(ctx context.Context, upd models.UserUpdate, step *models.OnboardingStep) error {
	if step != nil && !step.Valid() {
		return validationError("unknown onboarding step")
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	if s.state.User != nil {
		upd.Apply(s.state.User)
	}
	if step != nil {
		s.state.OnboardingStep = *step
		s.state.ProfileComplete = *step == models.StepCompleted
	}
	snap := s.state.clone()
	fns := s.collectSubsLocked()
	s.mu.Unlock()

	s.notify(snap, fns)

	if step != nil {
		s.persistOnboarding(ctx, *step)
	}
	return nil
}

// persistOnboarding writes the step durably when configured. Best-effort:
// a failed write is logged and the in-memory step stands.
func (s *Store) persistOnboarding(ctx context.Context, step models.OnboardingStep) {
	if !s.opts.PersistOnboarding {
		return
	}
	s.credMu.Lock()
	err := s.creds.Set(ctx, credOnboardingKey, []byte(step))
	s.credMu.Unlock()
	if err != nil {
		s.log.Warn(ctx, "failed to persist onboarding step", "error", err)
	}
}
