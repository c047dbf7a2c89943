// Package cli implements the interactive PortKeeper client: a small REPL over
// the API client with prompted input for credentials and catalog entries.
package cli

import (
	"bufio"
	"io"
	"os"

	"github.com/portkeeper/portkeeper/internal/client/client"
	"github.com/portkeeper/portkeeper/internal/client/config"
	"github.com/portkeeper/portkeeper/internal/client/session"
)

type App struct {
	config  *config.Config
	client  client.Client
	session *session.Store
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) *App {
	store := session.NewStore()
	app := &App{
		config:  c,
		session: store,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	app.client = client.NewHTTPClient(c.ServerBaseURL, store,
		client.WithSessionExpiredCallback(func() {
			app.println("Session expired, please log in again.")
		}))
	return app
}

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.session.User().Email
	}
	return "not logged in"
}
