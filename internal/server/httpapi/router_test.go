package httpapi

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portkeeper/portkeeper/internal/common"
	"github.com/portkeeper/portkeeper/internal/logging"
	"github.com/portkeeper/portkeeper/internal/server/models"
	"github.com/portkeeper/portkeeper/internal/server/services"
	"github.com/portkeeper/portkeeper/internal/token"
)

// --- fakes ---

type fakeAuth struct {
	session *services.Session
	err     error

	loggedOut    []string
	loggedOutAll []string
}

func (f *fakeAuth) Signup(ctx context.Context, email, password string) (*services.Session, error) {
	return f.session, f.err
}
func (f *fakeAuth) Login(ctx context.Context, email, password string) (*services.Session, error) {
	return f.session, f.err
}
func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*services.Session, error) {
	return f.session, f.err
}
func (f *fakeAuth) Logout(ctx context.Context, refreshToken string) {
	f.loggedOut = append(f.loggedOut, refreshToken)
}
func (f *fakeAuth) LogoutAll(ctx context.Context, userID string) error {
	f.loggedOutAll = append(f.loggedOutAll, userID)
	return f.err
}

type fakeCatalog struct {
	list []*models.Service
	one  *models.Service
	err  error

	deleted []string
}

func (f *fakeCatalog) List(ctx context.Context) ([]*models.Service, error) { return f.list, f.err }
func (f *fakeCatalog) Get(ctx context.Context, id string) (*models.Service, error) {
	return f.one, f.err
}
func (f *fakeCatalog) Create(ctx context.Context, name string, port int) (*models.Service, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Service{ID: "s-1", Name: name, Port: port, CreatedAt: time.Now(), UpdatedAt: time.Now()}, nil
}
func (f *fakeCatalog) Update(ctx context.Context, id string, name *string, port *int) (*models.Service, error) {
	return f.one, f.err
}
func (f *fakeCatalog) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

// --- helpers ---

func testCodec(t *testing.T) *token.Codec {
	t.Helper()
	key := make([]byte, token.KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	codec, err := token.NewCodec(key)
	require.NoError(t, err)
	return codec
}

func newTestServer(t *testing.T, auth *fakeAuth, catalog *fakeCatalog, codec *token.Codec) *httptest.Server {
	t.Helper()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(NewRouter(auth, catalog, codec, log))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, bearer string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func testSession() *services.Session {
	return &services.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
		User:         &models.User{ID: "u-1", Email: "alice@example.com"},
	}
}

// --- auth endpoints ---

func TestSignup_Created(t *testing.T) {
	srv := newTestServer(t, &fakeAuth{session: testSession()}, &fakeCatalog{}, testCodec(t))

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/signup", "",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body sessionBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "access", body.AccessToken)
	assert.Equal(t, "u-1", body.User.ID)
	assert.EqualValues(t, 900, body.ExpiresIn)
}

func TestSignup_Conflict(t *testing.T) {
	srv := newTestServer(t, &fakeAuth{err: common.ErrorEmailTaken}, &fakeCatalog{}, testCodec(t))

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/signup", "",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSignup_ValidatesBody(t *testing.T) {
	srv := newTestServer(t, &fakeAuth{session: testSession()}, &fakeCatalog{}, testCodec(t))

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/signup", "",
		map[string]string{"email": "not-an-email", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/signup", "",
		map[string]string{"email": "alice@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv := newTestServer(t, &fakeAuth{err: common.ErrorInvalidCredentials}, &fakeCatalog{}, testCodec(t))

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefresh_InvalidToken(t *testing.T) {
	srv := newTestServer(t, &fakeAuth{err: common.ErrorInvalidRefreshToken}, &fakeCatalog{}, testCodec(t))

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/refresh", "",
		map[string]string{"refreshToken": "spent"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefresh_Success(t *testing.T) {
	srv := newTestServer(t, &fakeAuth{session: testSession()}, &fakeCatalog{}, testCodec(t))

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/refresh", "",
		map[string]string{"refreshToken": "live"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogout_AlwaysNoContent(t *testing.T) {
	auth := &fakeAuth{}
	srv := newTestServer(t, auth, &fakeCatalog{}, testCodec(t))

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/logout", "",
		map[string]string{"refreshToken": "anything"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"anything"}, auth.loggedOut)

	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestLogoutAll_RequiresToken(t *testing.T) {
	auth := &fakeAuth{}
	codec := testCodec(t)
	srv := newTestServer(t, auth, &fakeCatalog{}, codec)

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/logout-all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	access, err := codec.EncryptAccess(token.AccessPayload{UserID: "u-1", Email: "alice@example.com"})
	require.NoError(t, err)
	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/logout-all", access, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"u-1"}, auth.loggedOutAll)
}

// --- authenticator ---

func TestAuthenticator_RejectsRefreshTokenAsAccess(t *testing.T) {
	codec := testCodec(t)
	srv := newTestServer(t, &fakeAuth{}, &fakeCatalog{}, codec)

	refresh, err := codec.EncryptRefresh(token.RefreshPayload{UserID: "u-1", TokenID: "rt-1"})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, srv.URL+"/services", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticator_RejectsGarbageAndMissing(t *testing.T) {
	srv := newTestServer(t, &fakeAuth{}, &fakeCatalog{}, testCodec(t))

	resp := doJSON(t, http.MethodGet, srv.URL+"/services", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/services", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// --- services endpoints ---

func accessToken(t *testing.T, codec *token.Codec) string {
	t.Helper()
	access, err := codec.EncryptAccess(token.AccessPayload{UserID: "u-1", Email: "alice@example.com"})
	require.NoError(t, err)
	return access
}

func TestServicesList(t *testing.T) {
	codec := testCodec(t)
	now := time.Now()
	catalog := &fakeCatalog{list: []*models.Service{
		{ID: "s-1", Name: "postgres", Port: 5432, CreatedAt: now, UpdatedAt: now},
	}}
	srv := newTestServer(t, &fakeAuth{}, catalog, codec)

	resp := doJSON(t, http.MethodGet, srv.URL+"/services", accessToken(t, codec), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body []serviceBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "postgres", body[0].Name)
}

func TestServicesCreate(t *testing.T) {
	codec := testCodec(t)
	srv := newTestServer(t, &fakeAuth{}, &fakeCatalog{}, codec)

	resp := doJSON(t, http.MethodPost, srv.URL+"/services", accessToken(t, codec),
		map[string]any{"name": "grafana", "port": 3000})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body serviceBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "grafana", body.Name)
	assert.Equal(t, 3000, body.Port)
}

func TestServicesCreate_ValidatesPortAndName(t *testing.T) {
	codec := testCodec(t)
	srv := newTestServer(t, &fakeAuth{}, &fakeCatalog{}, codec)
	access := accessToken(t, codec)

	resp := doJSON(t, http.MethodPost, srv.URL+"/services", access,
		map[string]any{"name": "grafana", "port": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/services", access,
		map[string]any{"name": "grafana", "port": 70000})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/services", access,
		map[string]any{"name": "", "port": 80})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServicesGet_NotFound(t *testing.T) {
	codec := testCodec(t)
	srv := newTestServer(t, &fakeAuth{}, &fakeCatalog{err: common.ErrorNotFound}, codec)

	resp := doJSON(t, http.MethodGet, srv.URL+"/services/"+uuid.NewString(), accessToken(t, codec), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServicesGet_MalformedIDIsNotFound(t *testing.T) {
	codec := testCodec(t)
	srv := newTestServer(t, &fakeAuth{}, &fakeCatalog{}, codec)

	resp := doJSON(t, http.MethodGet, srv.URL+"/services/not-a-uuid", accessToken(t, codec), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServicesUpdate(t *testing.T) {
	codec := testCodec(t)
	now := time.Now()
	id := uuid.NewString()
	catalog := &fakeCatalog{one: &models.Service{ID: id, Name: "postgres", Port: 5433, CreatedAt: now, UpdatedAt: now}}
	srv := newTestServer(t, &fakeAuth{}, catalog, codec)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/services/"+id, accessToken(t, codec),
		map[string]any{"port": 5433})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body serviceBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 5433, body.Port)
}

func TestServicesUpdate_EmptyBodyRejected(t *testing.T) {
	codec := testCodec(t)
	srv := newTestServer(t, &fakeAuth{}, &fakeCatalog{}, codec)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/services/"+uuid.NewString(), accessToken(t, codec),
		map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServicesDelete(t *testing.T) {
	codec := testCodec(t)
	catalog := &fakeCatalog{}
	srv := newTestServer(t, &fakeAuth{}, catalog, codec)

	id := uuid.NewString()
	resp := doJSON(t, http.MethodDelete, srv.URL+"/services/"+id, accessToken(t, codec), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{id}, catalog.deleted)
}
