package cli

import (
	"context"
	"fmt"

	"github.com/portkeeper/portkeeper/internal/common"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// Register prompts for credentials and creates an account. On success the
// client is signed in right away.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Signup(ctx, email, string(password)); err != nil {
		a.println(err.Error())
		return err
	}
	a.println("Account created, you are logged in.")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		a.println(err.Error())
		return err
	}
	a.println("Logged in.")
	return nil
}

// Logout ends the session. The server call is best-effort; local state is
// always cleared.
func (a *App) Logout(ctx context.Context) error {
	a.client.Logout(ctx)
	a.println("Logged out.")
	return nil
}

func (a *App) promptCredentials() (string, []byte, error) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}
