package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/portkeeper/portkeeper/internal/client/session"
)

const requestTimeout = 15 * time.Second

// HTTPClient talks to the PortKeeper API. When a request bounces with 401 it
// refreshes the token pair and replays the request exactly once; concurrent
// refresh attempts are coalesced into a single /auth/refresh call.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	session *session.Store

	refreshGroup singleflight.Group

	// onSessionExpired fires once the session is torn down because a refresh
	// failed or no refresh token was available.
	onSessionExpired func()
}

type Option func(*HTTPClient)

// WithSessionExpiredCallback installs a hook invoked after the local session
// is cleared due to an unrecoverable 401.
func WithSessionExpiredCallback(fn func()) Option {
	return func(c *HTTPClient) { c.onSessionExpired = fn }
}

// WithHTTPClient substitutes the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func NewHTTPClient(baseURL string, store *session.Store, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		session: store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session exposes the underlying store for the CLI (current user, auth state).
func (c *HTTPClient) Session() *session.Store {
	return c.session
}

type sessionBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type errorBody struct {
	Message string `json:"message"`
}

type serviceBody struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Port int    `json:"port"`
}

// --- auth operations ---

func (c *HTTPClient) Signup(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/auth/signup", email, password)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, email, password string) error {
	var body sessionBody
	err := c.do(ctx, http.MethodPost, path,
		map[string]string{"email": email, "password": password}, &body, false)
	if err != nil {
		return err
	}
	c.session.Set(body.AccessToken, body.RefreshToken,
		session.User{ID: body.User.ID, Email: body.User.Email})
	return nil
}

// Logout ends the session server-side on a best-effort basis and always
// clears the local state.
func (c *HTTPClient) Logout(ctx context.Context) {
	if refresh := c.session.RefreshToken(); refresh != "" {
		_ = c.do(ctx, http.MethodPost, "/auth/logout",
			map[string]string{"refreshToken": refresh}, nil, false)
	}
	c.session.Clear()
}

// --- catalog operations ---

func (c *HTTPClient) ListServices(ctx context.Context) ([]Service, error) {
	var body []serviceBody
	if err := c.do(ctx, http.MethodGet, "/services", nil, &body, true); err != nil {
		return nil, err
	}
	list := make([]Service, 0, len(body))
	for _, s := range body {
		list = append(list, Service{ID: s.ID, Name: s.Name, Port: s.Port})
	}
	return list, nil
}

func (c *HTTPClient) AddService(ctx context.Context, name string, port int) (*Service, error) {
	var body serviceBody
	err := c.do(ctx, http.MethodPost, "/services",
		map[string]any{"name": name, "port": port}, &body, true)
	if err != nil {
		return nil, err
	}
	return &Service{ID: body.ID, Name: body.Name, Port: body.Port}, nil
}

func (c *HTTPClient) RemoveService(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/services/"+id, nil, nil, true)
}

// --- request plumbing ---

// do runs one API call. For authenticated calls a 401 triggers a single
// refresh-and-replay; the replayed request never refreshes again.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, authenticated bool) error {
	usedToken := c.session.AccessToken()

	status, err := c.roundTrip(ctx, method, path, in, out, usedToken)
	if err != nil {
		return err
	}
	if status != http.StatusUnauthorized || !authenticated {
		return c.mapStatus(status)
	}

	if err := c.refresh(ctx, usedToken); err != nil {
		return err
	}

	status, err = c.roundTrip(ctx, method, path, in, out, c.session.AccessToken())
	if err != nil {
		return err
	}
	return c.mapStatus(status)
}

// refresh rotates the token pair. Concurrent callers collapse into one
// in-flight exchange; a caller whose token was already rotated by the time
// the flight starts skips the network call entirely.
func (c *HTTPClient) refresh(ctx context.Context, usedToken string) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		if c.session.AccessToken() != usedToken {
			// Another caller already rotated the pair.
			return nil, nil
		}

		refreshToken := c.session.RefreshToken()
		if refreshToken == "" {
			return nil, c.expireSession()
		}

		var body sessionBody
		status, err := c.roundTrip(ctx, http.MethodPost, "/auth/refresh",
			map[string]string{"refreshToken": refreshToken}, &body, "")
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, c.expireSession()
		}

		c.session.SetTokens(body.AccessToken, body.RefreshToken)
		return nil, nil
	})
	return err
}

func (c *HTTPClient) expireSession() error {
	c.session.Clear()
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	return ErrSessionExpired
}

// roundTrip performs one HTTP exchange and decodes the body. API-level errors
// are reported through the returned status; transport failures map to
// ErrUnavailable.
func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, in, out any, bearer string) (int, error) {
	var reqBody io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return 0, err
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return 0, err
		}
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) mapStatus(status int) error {
	switch {
	case status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusConflict:
		return ErrEmailTaken
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest:
		return ErrBadRequest
	default:
		return fmt.Errorf("server error: status %d", status)
	}
}
