package views

import (
	"context"
	"flag"
	"fmt"
	"time"
)

// Login authenticates against the API and persists the session. Credentials
// come from flags or, when omitted, interactive prompts.
func (v *Views) Login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(v.out)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = v.prompt("username"); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = v.prompt("password"); err != nil {
			return err
		}
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("username and password are required")
	}

	tok, err := v.sdk.Login(ctx, *username, *password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := v.session.HandleLogin(tok); err != nil {
		return err
	}

	user := tok.User()
	v.printf("welcome %s (%s)\n", user.Username, user.Role)
	return nil
}

// Logout ends the session locally. The API keeps no session server-side, so
// there is nothing to revoke remotely.
func (v *Views) Logout(ctx context.Context, args []string) error {
	v.session.Logout()
	v.printf("logged out\n")
	return nil
}

// Whoami shows the current session.
func (v *Views) Whoami(ctx context.Context, args []string) error {
	user, ok := v.session.CurrentUser()
	if !ok {
		v.printf("not logged in\n")
		return nil
	}

	v.printf("%s (%s), id %d\n", user.Username, user.Role, user.ID)
	if exp, ok := v.session.AccessTokenExpiry(); ok {
		v.printf("access token expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}
