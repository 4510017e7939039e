package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/vahire/vahire/internal/client/api"
	"github.com/vahire/vahire/internal/client/models"
	"github.com/vahire/vahire/internal/common"
)

func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer common.WipeByteArray(password)

	if _, err := a.store.Login(ctx, email, string(password)); err != nil {
		fmt.Println("Login failed:", err)
		return
	}

	st := a.store.Snapshot()
	fmt.Printf("Signed in as %s\n", st.User.Email)
}

func (a *App) Register(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	phone, err := GetSimpleText(a.reader, "Phone", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	displayName, err := GetSimpleText(a.reader, "Display name", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	userType, err := GetSimpleText(a.reader, "Account type (client/va)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer common.WipeByteArray(password)

	reg := api.Registration{
		Email:       email,
		Phone:       phone,
		Password:    string(password),
		UserType:    models.UserType(userType),
		DisplayName: displayName,
	}

	if _, err := a.store.Register(ctx, reg); err != nil {
		fmt.Println("Registration failed:", err)
		return
	}

	st := a.store.Snapshot()
	fmt.Printf("Registered %s, next step: %s\n", st.User.Email, st.OnboardingStep)
}

func (a *App) Logout(ctx context.Context) {
	if _, err := a.store.Logout(ctx); err != nil {
		fmt.Println("Logout failed:", err)
		return
	}
	fmt.Println("Signed out")
}

func (a *App) Guest(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Println("Usage: guest on|off")
		return
	}
	a.store.SetGuestMode(args[0] == "on")
	fmt.Println("Guest mode:", args[0])
}

func (a *App) Ping(ctx context.Context) {
	if err := a.api.Ping(ctx); err != nil {
		fmt.Println("Backend unreachable:", err)
		return
	}
	fmt.Println("Backend is up")
}
