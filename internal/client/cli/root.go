package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Root runs the command loop until the user quits, the input stream ends or
// the context is cancelled.
func (a *App) Root(ctx context.Context) {
	fmt.Println("vahire client. Type 'help' for a list of commands.")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := GetSimpleText(a.reader, "Enter command", os.Stdout)
		if err != nil {
			if err == io.EOF {
				return
			}
			fmt.Println("Error:", err)
			continue
		}

		if quit := a.Dispatch(ctx, line); quit {
			return
		}
	}
}

// Dispatch executes a single command line and reports whether the loop
// should terminate.
func (a *App) Dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		a.Help()
	case "login":
		a.Login(ctx)
	case "register":
		a.Register(ctx)
	case "logout":
		a.Logout(ctx)
	case "guest":
		a.Guest(args)
	case "usertype":
		a.UserType(args)
	case "step":
		a.Step(ctx, args)
	case "profile":
		a.Profile(ctx)
	case "whoami":
		a.WhoAmI()
	case "avatar":
		a.Avatar(ctx)
	case "resize":
		a.Resize(args)
	case "ping":
		a.Ping(ctx)
	case "exit", "quit":
		fmt.Println("Bye!")
		return true
	default:
		fmt.Println("Unknown command:", cmd)
	}
	return false
}

func (a *App) Help() {
	fmt.Println(`Commands:
  login                     sign in with email and password
  register                  create an account
  logout                    sign out and clear stored credentials
  guest on|off              toggle guest browsing
  usertype client|va        choose account type during onboarding
  step <step>               set onboarding step (user-type, profile-setup, completed)
  profile                   update display name and phone
  whoami                    show the current session
  avatar                    request an avatar upload URL
  resize <viewport>         change viewport (desktop, tablet, phone)
  ping                      check backend availability
  exit                      quit`)
}
