package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"unicode/utf8"

	"github.com/portkeeper/portkeeper/internal/common"
	"github.com/portkeeper/portkeeper/internal/server/services"
)

// Auth is the slice of the auth service the HTTP layer needs.
type Auth interface {
	Signup(ctx context.Context, email, password string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	Logout(ctx context.Context, refreshToken string)
	LogoutAll(ctx context.Context, userID string) error
}

type AuthHandler struct {
	auth Auth
}

func NewAuthHandler(auth Auth) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionBody struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int64    `json:"expiresIn"`
	User         userBody `json:"user"`
}

func sessionResponse(s *services.Session) sessionBody {
	return sessionBody{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		User:         userBody{ID: s.User.ID, Email: s.User.Email},
	}
}

const (
	passwordMinLen = 8
	passwordMaxLen = 128
)

func validateCredentials(req credentialsRequest) string {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "invalid email address"
	}
	if n := utf8.RuneCountInString(req.Password); n < passwordMinLen || n > passwordMaxLen {
		return "password must be between 8 and 128 characters"
	}
	return ""
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateCredentials(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	session, err := h.auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(session))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalidRefreshToken),
			errors.Is(err, common.ErrRefreshTokenExpired),
			errors.Is(err, common.ErrAccountDeactivated):
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

// Logout always answers 204. A token that is garbage, expired, or already
// revoked leaves no session to end, which is the caller's desired state.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err == nil && req.RefreshToken != "" {
		h.auth.Logout(r.Context(), req.RefreshToken)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.auth.LogoutAll(r.Context(), identity.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
