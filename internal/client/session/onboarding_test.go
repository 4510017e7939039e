package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vahire/vahire/internal/client/models"
)

func TestSetUserType_DoesNotAdvanceStep(t *testing.T) {
	s := New(happyAPI(), newFakeCreds(), testLogger(), Options{})

	require.NoError(t, s.SetUserType(models.UserTypeVA))

	st := s.Snapshot()
	require.Equal(t, models.UserTypeVA, st.UserType)
	require.Equal(t, models.OnboardingStep(""), st.OnboardingStep)
	require.False(t, st.ProfileComplete)
}

func TestSetUserType_Invalid(t *testing.T) {
	s := New(happyAPI(), newFakeCreds(), testLogger(), Options{})

	err := s.SetUserType("superadmin")
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, KindValidation, aerr.Kind)
}

func TestSetOnboardingStep_DerivesProfileComplete(t *testing.T) {
	s := New(happyAPI(), newFakeCreds(), testLogger(), Options{})
	ctx := context.Background()

	require.NoError(t, s.SetOnboardingStep(ctx, models.StepUserType))
	st := s.Snapshot()
	require.Equal(t, models.StepUserType, st.OnboardingStep)
	require.False(t, st.ProfileComplete)

	require.NoError(t, s.SetOnboardingStep(ctx, models.StepProfileSetup))
	require.False(t, s.Snapshot().ProfileComplete)

	require.NoError(t, s.SetOnboardingStep(ctx, models.StepCompleted))
	st = s.Snapshot()
	require.Equal(t, models.StepCompleted, st.OnboardingStep)
	require.True(t, st.ProfileComplete)
	requireInvariants(t, st)
}

func TestSetOnboardingStep_CompletedIsIdempotent(t *testing.T) {
	s := New(happyAPI(), newFakeCreds(), testLogger(), Options{})
	ctx := context.Background()

	require.NoError(t, s.SetOnboardingStep(ctx, models.StepCompleted))
	once := s.Snapshot()

	require.NoError(t, s.SetOnboardingStep(ctx, models.StepCompleted))
	twice := s.Snapshot()

	require.Equal(t, once, twice)
}

func TestUpdateUserProfile_MergesFields(t *testing.T) {
	s := New(happyAPI(), newFakeCreds(), testLogger(), Options{})
	ctx := context.Background()

	_, err := s.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	name := "Ada L."
	avatar := "https://cdn.vahire.dev/avatars/u-1"
	step := models.StepCompleted
	require.NoError(t, s.UpdateUserProfile(ctx, models.UserUpdate{
		DisplayName: &name,
		AvatarURL:   &avatar,
	}, &step))

	st := s.Snapshot()
	requireInvariants(t, st)
	require.Equal(t, "Ada L.", st.User.DisplayName)
	require.Equal(t, avatar, st.User.AvatarURL)
	require.Equal(t, "+15550001", st.User.Phone) // untouched
	require.True(t, st.ProfileComplete)
}

func TestUpdateUserProfile_NilUserIsNoOpMerge(t *testing.T) {
	s := New(happyAPI(), newFakeCreds(), testLogger(), Options{})
	ctx := context.Background()

	name := "Ghost"
	step := models.StepProfileSetup
	require.NoError(t, s.UpdateUserProfile(ctx, models.UserUpdate{DisplayName: &name}, &step))

	st := s.Snapshot()
	require.Nil(t, st.User)
	// the step still applies
	require.Equal(t, models.StepProfileSetup, st.OnboardingStep)
}

func TestUpdateUserProfile_NoStepKeepsDerivation(t *testing.T) {
	s := New(happyAPI(), newFakeCreds(), testLogger(), Options{})
	ctx := context.Background()

	_, err := s.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	name := "Ada"
	require.NoError(t, s.UpdateUserProfile(ctx, models.UserUpdate{DisplayName: &name}, nil))

	st := s.Snapshot()
	require.Equal(t, models.OnboardingStep(""), st.OnboardingStep)
	require.False(t, st.ProfileComplete)
}

func TestOnboardingPersistence_Enabled(t *testing.T) {
	creds := newFakeCreds()
	fa := happyAPI()
	opts := Options{PersistOnboarding: true}
	ctx := context.Background()

	first := New(fa, creds, testLogger(), opts)
	_, err := first.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	require.NoError(t, first.SetOnboardingStep(ctx, models.StepProfileSetup))

	second := New(fa, creds, testLogger(), opts)
	_, err = second.LoadStoredAuth(ctx)
	require.NoError(t, err)

	st := second.Snapshot()
	require.Equal(t, models.StepProfileSetup, st.OnboardingStep)
	require.False(t, st.ProfileComplete)
}

func TestOnboardingPersistence_DisabledByDefault(t *testing.T) {
	creds := newFakeCreds()
	fa := happyAPI()
	ctx := context.Background()

	first := New(fa, creds, testLogger(), Options{})
	_, err := first.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	require.NoError(t, first.SetOnboardingStep(ctx, models.StepCompleted))

	second := New(fa, creds, testLogger(), Options{})
	_, err = second.LoadStoredAuth(ctx)
	require.NoError(t, err)

	// a fresh process re-onboards
	require.Equal(t, models.OnboardingStep(""), second.Snapshot().OnboardingStep)
}

func TestOnboardingPersistence_ClearedByLogout(t *testing.T) {
	creds := newFakeCreds()
	fa := happyAPI()
	opts := Options{PersistOnboarding: true}
	ctx := context.Background()

	s := New(fa, creds, testLogger(), opts)
	_, err := s.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	require.NoError(t, s.SetOnboardingStep(ctx, models.StepCompleted))

	_, err = s.Logout(ctx)
	require.NoError(t, err)

	raw, err := creds.Get(ctx, credOnboardingKey)
	require.NoError(t, err)
	require.Nil(t, raw)
}
