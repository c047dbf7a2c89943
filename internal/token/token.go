// Package token implements the encrypted session tokens used by PortKeeper.
//
// A token is a versioned envelope: the literal prefix "v1." followed by the
// base64url encoding of nonce||ciphertext, where the ciphertext is the
// AES-256-GCM encryption of a JSON payload. The payload carries the subject,
// a kind discriminator (access vs refresh) and its own expiry, so both
// integrity and expiry are enforced here rather than by callers.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/portkeeper/portkeeper/internal/common"
)

// Token lifetimes are policy constants, not configuration.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// KeySize is the required symmetric key length (AES-256).
const KeySize = 32

const (
	envelopePrefix = "v1."
	nonceSize      = 12
)

// ErrInvalidKey is returned by NewCodec when the key is not exactly 32 bytes.
var ErrInvalidKey = errors.New("token: key must be exactly 32 bytes")

// Kind discriminates the two payload variants sharing the envelope format.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// AccessPayload identifies the subject of a short-lived access token.
type AccessPayload struct {
	UserID string
	Email  string
}

// RefreshPayload identifies the subject of a refresh token together with the
// id of the server-side refresh-token record it rotates (the rotation handle).
type RefreshPayload struct {
	UserID  string
	TokenID string
}

// envelope is the wire form of both payload kinds. Kind acts as the tag of
// the variant; decode matches it exhaustively and rejects anything unknown.
type envelope struct {
	Sub     string `json:"sub"`
	Email   string `json:"email,omitempty"`
	TokenID string `json:"tid,omitempty"`
	Kind    Kind   `json:"kind"`
	Exp     int64  `json:"exp"`
}

// Codec encrypts and decrypts session tokens under a single symmetric key.
// The key is injected at construction so tests can use their own.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec constructs a Codec for the given 32-byte key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead}, nil
}

// EncryptAccess issues an access token expiring AccessTokenTTL from now.
func (c *Codec) EncryptAccess(p AccessPayload) (string, error) {
	return c.seal(envelope{
		Sub:   p.UserID,
		Email: p.Email,
		Kind:  KindAccess,
		Exp:   time.Now().Add(AccessTokenTTL).Unix(),
	})
}

// EncryptRefresh issues a refresh token expiring RefreshTokenTTL from now.
func (c *Codec) EncryptRefresh(p RefreshPayload) (string, error) {
	return c.seal(envelope{
		Sub:     p.UserID,
		TokenID: p.TokenID,
		Kind:    KindRefresh,
		Exp:     time.Now().Add(RefreshTokenTTL).Unix(),
	})
}

// DecryptAccess verifies a token string as an access token. It returns
// common.ErrInvalidToken for malformed, forged, or wrong-kind tokens and
// common.ErrTokenExpired when the embedded expiry has passed.
func (c *Codec) DecryptAccess(s string) (*AccessPayload, error) {
	e, err := c.open(s, KindAccess)
	if err != nil {
		return nil, err
	}
	return &AccessPayload{UserID: e.Sub, Email: e.Email}, nil
}

// DecryptRefresh verifies a token string as a refresh token. Error semantics
// match DecryptAccess.
func (c *Codec) DecryptRefresh(s string) (*RefreshPayload, error) {
	e, err := c.open(s, KindRefresh)
	if err != nil {
		return nil, err
	}
	return &RefreshPayload{UserID: e.Sub, TokenID: e.TokenID}, nil
}

func (c *Codec) seal(e envelope) (string, error) {
	plaintext, err := json.Marshal(e)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return envelopePrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Codec) open(s string, want Kind) (*envelope, error) {
	raw, ok := strings.CutPrefix(s, envelopePrefix)
	if !ok {
		return nil, common.ErrInvalidToken
	}

	sealed, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil || len(sealed) < nonceSize {
		return nil, common.ErrInvalidToken
	}

	plaintext, err := c.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	e := &envelope{}
	if err := json.Unmarshal(plaintext, e); err != nil {
		return nil, common.ErrInvalidToken
	}

	// Exhaustive match over the kind tag: unknown kinds are forgeries.
	switch e.Kind {
	case KindAccess, KindRefresh:
	default:
		return nil, common.ErrInvalidToken
	}
	if e.Kind != want {
		return nil, common.ErrInvalidToken
	}

	if time.Now().Unix() >= e.Exp {
		return nil, common.ErrTokenExpired
	}

	return e, nil
}

// GenerateKey returns a fresh base64-encoded 256-bit key. It exists for
// operators provisioning a deployment and is not called at runtime.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// ParseKey decodes a base64-encoded key and validates its length.
func ParseKey(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("token: key is not set")
	}
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("token: key is not valid base64: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}
