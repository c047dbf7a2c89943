// Package services contains server-side business logic. This file implements
// AuthService: signup, login, refresh-token rotation, and logout on top of the
// encrypted token codec and the refresh-token store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/portkeeper/portkeeper/internal/common"
	"github.com/portkeeper/portkeeper/internal/dbx"
	"github.com/portkeeper/portkeeper/internal/logging"
	"github.com/portkeeper/portkeeper/internal/server/credentials"
	"github.com/portkeeper/portkeeper/internal/server/models"
	"github.com/portkeeper/portkeeper/internal/server/repositories/repomanager"
	"github.com/portkeeper/portkeeper/internal/token"
)

// Session is the result of any operation that signs a user in: a fresh token
// pair plus the user it belongs to. ExpiresIn is the access-token lifetime in
// seconds.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *models.User
}

// AuthService owns the session lifecycle. Every refresh token it issues is
// backed by a server-side record, so individual sessions and whole accounts
// can be revoked.
type AuthService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	codec *token.Codec
	log   logging.Logger
}

func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, codec *token.Codec, log logging.Logger) *AuthService {
	return &AuthService{
		db:    db,
		repos: repos,
		codec: codec,
		log:   log.With("service", "auth"),
	}
}

// dummyPasswordHash is compared against when the account does not exist, so
// login takes the same time whether or not the email is registered.
var dummyPasswordHash, _ = credentials.HashPassword("portkeeper-no-such-user")

// Signup creates an account and signs it in. A duplicate email, including one
// held by a deactivated account, yields common.ErrorEmailTaken.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*Session, error) {
	email = credentials.NormalizeEmail(email)

	hash, err := credentials.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var session *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repos.Users(tx).Create(ctx, &models.User{Email: email, PasswordHash: hash})
		if err != nil {
			return err
		}
		session, err = s.issueSession(ctx, tx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorEmailTaken) {
			return nil, common.ErrorEmailTaken
		}
		s.log.Error(ctx, "signup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return session, nil
}

// Login verifies the credentials and signs the user in. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = credentials.NormalizeEmail(email)

	user, err := s.repos.Users(s.db).GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			credentials.CheckPassword(password, dummyPasswordHash)
			return nil, common.ErrorInvalidCredentials
		}
		s.log.Error(ctx, "login lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !credentials.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrorInvalidCredentials
	}

	var session *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		session, err = s.issueSession(ctx, tx, user)
		return err
	})
	if err != nil {
		s.log.Error(ctx, "login failed", "error", err)
		return nil, common.ErrorInternal
	}
	return session, nil
}

// Refresh redeems a refresh token for a new session and revokes the presented
// one. Each token redeems at most once: the revocation is a conditional
// update, and losing it means another call already spent the token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	payload, err := s.codec.DecryptRefresh(refreshToken)
	if err != nil {
		return nil, common.ErrorInvalidRefreshToken
	}

	var session *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		record, err := s.repos.RefreshTokens(tx).Find(ctx, payload.TokenID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorInvalidRefreshToken
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}
		if record.UserID != payload.UserID ||
			!credentials.CheckRefreshToken(refreshToken, record.TokenHash) {
			return common.ErrorInvalidRefreshToken
		}
		if time.Now().After(record.ExpiresAt) {
			return common.ErrRefreshTokenExpired
		}

		won, err := s.repos.RefreshTokens(tx).Revoke(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
		if !won {
			return common.ErrorInvalidRefreshToken
		}

		user, err := s.repos.Users(tx).GetByID(ctx, record.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorInvalidRefreshToken
			}
			return fmt.Errorf("error loading user: %w", err)
		}
		if user.DeletedAt != nil {
			return common.ErrAccountDeactivated
		}

		session, err = s.issueSession(ctx, tx, user)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalidRefreshToken),
			errors.Is(err, common.ErrRefreshTokenExpired),
			errors.Is(err, common.ErrAccountDeactivated):
			return nil, err
		}
		s.log.Error(ctx, "refresh failed", "error", err)
		return nil, common.ErrorInternal
	}
	return session, nil
}

// Logout revokes the record behind the presented refresh token. It never
// fails: an invalid, expired, or already-revoked token leaves nothing to do.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	payload, err := s.codec.DecryptRefresh(refreshToken)
	if err != nil {
		return
	}

	repo := s.repos.RefreshTokens(s.db)
	record, err := repo.Find(ctx, payload.TokenID)
	if err != nil {
		return
	}
	if !credentials.CheckRefreshToken(refreshToken, record.TokenHash) {
		return
	}
	if _, err := repo.Revoke(ctx, record.ID); err != nil {
		s.log.Warn(ctx, "logout revoke failed", "error", err)
	}
}

// LogoutAll revokes every live session of the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repos.RefreshTokens(s.db).RevokeAllForUser(ctx, userID); err != nil {
		s.log.Error(ctx, "logout-all failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// issueSession mints a token pair for the user. The refresh token embeds the
// id of its server-side record, so the record is inserted first with a
// placeholder hash, then the token is encoded, then its hash is stored. Both
// writes ride the caller's transaction.
func (s *AuthService) issueSession(ctx context.Context, tx dbx.DBTX, user *models.User) (*Session, error) {
	access, err := s.codec.EncryptAccess(token.AccessPayload{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("error encoding access token: %w", err)
	}

	repo := s.repos.RefreshTokens(tx)
	recordID, err := repo.Create(ctx, user.ID, time.Now().Add(token.RefreshTokenTTL))
	if err != nil {
		return nil, fmt.Errorf("error creating refresh token record: %w", err)
	}

	refresh, err := s.codec.EncryptRefresh(token.RefreshPayload{UserID: user.ID, TokenID: recordID})
	if err != nil {
		return nil, fmt.Errorf("error encoding refresh token: %w", err)
	}
	hash, err := credentials.HashRefreshToken(refresh)
	if err != nil {
		return nil, fmt.Errorf("error hashing refresh token: %w", err)
	}
	if err := repo.SetTokenHash(ctx, recordID, hash); err != nil {
		return nil, fmt.Errorf("error storing refresh token hash: %w", err)
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(token.AccessTokenTTL.Seconds()),
		User:         user,
	}, nil
}
