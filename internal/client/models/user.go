// Package models defines the domain types shared by the client-side
// packages: the user profile, the token pair, and the onboarding vocabulary.
package models

import "time"

// UserType distinguishes the two sides of the marketplace: clients who hire
// and virtual assistants who get hired.
type UserType string

const (
	UserTypeClient UserType = "client"
	UserTypeVA     UserType = "va"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	return t == UserTypeClient || t == UserTypeVA
}

// OnboardingStep is the stage a newly registered user is at before reaching
// the main application. The zero value means the stage is not yet determined.
type OnboardingStep string

const (
	StepUserType     OnboardingStep = "user-type"
	StepProfileSetup OnboardingStep = "profile-setup"
	StepCompleted    OnboardingStep = "completed"
)

// Valid reports whether s is one of the known onboarding steps.
func (s OnboardingStep) Valid() bool {
	return s == StepUserType || s == StepProfileSetup || s == StepCompleted
}

// User is the identity record of the signed-in account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	UserType    UserType  `json:"user_type"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserUpdate is a partial profile change. Nil fields are left untouched.
type UserUpdate struct {
	Phone       *string `json:"phone,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// Apply merges the update into u field by field.
func (up UserUpdate) Apply(u *User) {
	if up.Phone != nil {
		u.Phone = *up.Phone
	}
	if up.DisplayName != nil {
		u.DisplayName = *up.DisplayName
	}
	if up.AvatarURL != nil {
		u.AvatarURL = *up.AvatarURL
	}
}
