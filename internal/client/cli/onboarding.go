package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/vahire/vahire/internal/client/models"
	"github.com/vahire/vahire/internal/client/navigation"
)

func (a *App) UserType(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: usertype client|va")
		return
	}
	if err := a.store.SetUserType(models.UserType(args[0])); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Account type set to", args[0])
}

func (a *App) Step(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: step user-type|profile-setup|completed")
		return
	}
	if err := a.store.SetOnboardingStep(ctx, models.OnboardingStep(args[0])); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Onboarding step:", args[0])
}

func (a *App) Profile(ctx context.Context) {
	displayName, err := GetSimpleText(a.reader, "Display name (empty to keep)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	phone, err := GetSimpleText(a.reader, "Phone (empty to keep)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	var upd models.UserUpdate
	if displayName != "" {
		upd.DisplayName = &displayName
	}
	if phone != "" {
		upd.Phone = &phone
	}

	if err := a.store.UpdateUserProfile(ctx, upd, nil); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Profile updated")
}

func (a *App) WhoAmI() {
	st := a.store.Snapshot()
	switch {
	case st.Authenticated:
		fmt.Printf("Signed in as %s (%s)\n", st.User.Email, st.UserType)
		fmt.Printf("Onboarding step: %q, profile complete: %v\n", st.OnboardingStep, st.ProfileComplete)
	case st.GuestMode:
		fmt.Println("Browsing as guest")
	default:
		fmt.Println("Not signed in")
	}
	if st.Error != "" {
		fmt.Println("Last error:", st.Error)
	}
	if a.host != nil {
		fmt.Println("Navigation tree:", a.host.Tree())
	}
}

func (a *App) Avatar(ctx context.Context) {
	st := a.store.Snapshot()
	if !st.Authenticated {
		fmt.Println("Sign in first")
		return
	}

	key, url, err := a.api.AvatarUploadURL(ctx, st.Tokens.AccessToken)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Upload your avatar with an HTTP PUT to:")
	fmt.Println(" ", url)

	avatarURL := "/avatars/" + key
	if err := a.store.UpdateUserProfile(ctx, models.UserUpdate{AvatarURL: &avatarURL}, nil); err != nil {
		fmt.Println("Error:", err)
	}
}

func (a *App) Resize(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: resize desktop|tablet|phone")
		return
	}
	if a.host == nil {
		fmt.Println("Navigation host not running")
		return
	}
	a.host.SetViewport(navigation.Viewport(args[0]))
	fmt.Println("Viewport:", args[0], "tree:", a.host.Tree())
}
